package core

import "context"

// Catalog 是展品目录协作方的领域接口。
//
// 引擎对目录只读：Snapshot 返回某一时刻的在展展品列表，
// 顺序稳定（同分排序的确定性依赖输入顺序）。
//
// 实现：
//   - catalog.MemoryCatalog 实现此接口
type Catalog interface {
	// Snapshot 返回当前在展展品的点时刻快照。
	Snapshot(ctx context.Context) ([]*Exhibit, error)
}
