// Package vectormath 提供定长数值向量的相似度计算与 Top-K 选取。
package vectormath

import (
	"math"
	"sort"
)

// Cosine 计算两个向量的余弦相似度 dot(a,b) / (‖a‖·‖b‖)。
//
// 约定：
//   - 长度不一致时只比较重叠前缀（同一索引内的向量应保证等维）
//   - 任一向量范数为 0 时返回 0（退化向量保护，不抛错）
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK 返回按 scoreFn 降序的前 k 个元素，同分保持原始顺序（稳定）。
// k >= len(items) 时返回全部元素（排序后）；k <= 0 返回空切片。
func TopK[T any](items []T, k int, scoreFn func(T) float64) []T {
	if k <= 0 {
		return []T{}
	}

	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return scoreFn(out[i]) > scoreFn(out[j])
	})

	if k >= len(out) {
		return out
	}
	return out[:k]
}

// Mean 按元素平均多个等维向量；vectors 为空返回 nil。
// 长度不一致时以首个向量的维度为准，短向量缺失的维度按 0 处理。
func Mean(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, vec := range vectors {
		for i := 0; i < dim && i < len(vec); i++ {
			sum[i] += vec[i]
		}
	}
	for i := range sum {
		sum[i] /= float64(len(vectors))
	}
	return sum
}
