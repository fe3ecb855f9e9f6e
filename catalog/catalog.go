// Package catalog 提供展项目录的只读快照来源。
// 引擎对目录只读不写：目录的增删改由外部协作方负责。
package catalog

import (
	"context"
	"sync"

	"github.com/rushteam/tourkit/core"
)

// MemoryCatalog 是进程内的展项目录。
// Replace 整体换入新快照，Snapshot 返回当时的切片；
// 换入后旧快照不再被修改，读侧无需拷贝。
type MemoryCatalog struct {
	mu       sync.RWMutex
	exhibits []*core.Exhibit
}

// NewMemoryCatalog 创建目录，exhibits 可为空。
func NewMemoryCatalog(exhibits []*core.Exhibit) *MemoryCatalog {
	return &MemoryCatalog{exhibits: exhibits}
}

// Snapshot 实现 core.Catalog 接口，返回当前时点的展项列表。
func (c *MemoryCatalog) Snapshot(_ context.Context) ([]*core.Exhibit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exhibits, nil
}

// Replace 整体替换目录内容。
func (c *MemoryCatalog) Replace(exhibits []*core.Exhibit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exhibits = exhibits
}

// Len 返回当前展项数量。
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.exhibits)
}

var _ core.Catalog = (*MemoryCatalog)(nil)
