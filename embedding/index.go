// Package embedding 管理展品向量索引与访客画像向量化。
//
// 索引在进程启动时从外部文件一次性加载，此后只读，
// 可被并发读取而无需加锁。索引缺失是受支持的非致命状态：
// 相似度打分整体跳过，融合阶段切换到无向量权重组。
package embedding

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Record 是单条展品向量记录。
type Record struct {
	ExhibitID string    `json:"id"`
	Vector    []float64 `json:"vector"`
	Category  string    `json:"category,omitempty"`
}

// Index 是只读的展品向量索引。
type Index struct {
	records []Record
	byID    map[string][]float64
}

// NewIndex 以记录列表构造索引。空向量的记录被跳过。
func NewIndex(records []Record) *Index {
	idx := &Index{
		records: make([]Record, 0, len(records)),
		byID:    make(map[string][]float64, len(records)),
	}
	for _, r := range records {
		if r.ExhibitID == "" || len(r.Vector) == 0 {
			continue
		}
		idx.records = append(idx.records, r)
		idx.byID[r.ExhibitID] = r.Vector
	}
	return idx
}

// LoadIndex 从 JSON 文件加载向量索引。
// 文件不存在返回 (nil, nil)：索引缺失是受支持的状态，不是错误。
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read embedding file: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse embedding file: %w", err)
	}
	return NewIndex(records), nil
}

// Len 返回索引中的记录数。
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.records)
}

// Vector 按展品 ID 查询向量。
func (idx *Index) Vector(exhibitID string) ([]float64, bool) {
	if idx == nil {
		return nil, false
	}
	v, ok := idx.byID[exhibitID]
	return v, ok
}

// Records 返回全部记录（只读，调用方不得修改）。
func (idx *Index) Records() []Record {
	if idx == nil {
		return nil
	}
	return idx.records
}

// VectorsByCategory 返回类别命中 categories 任一项的全部向量。
// 类别匹配为小写子串匹配（"earth-science" 命中 "Earth-Science Gallery"）。
func (idx *Index) VectorsByCategory(categories []string) [][]float64 {
	if idx == nil || len(categories) == 0 {
		return nil
	}
	out := make([][]float64, 0, len(idx.records))
	for _, r := range idx.records {
		cat := strings.ToLower(r.Category)
		for _, want := range categories {
			if cat != "" && strings.Contains(cat, want) {
				out = append(out, r.Vector)
				break
			}
		}
	}
	return out
}
