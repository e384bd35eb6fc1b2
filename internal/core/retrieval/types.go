package retrieval

import "context"

// CandidateRecord 檢索返回的原始菜譜候選。
// tags 與 instructions 可能是已結構化的列表，也可能是 JSON 編碼字串，
// 一律原樣保留，由上層正規化。
type CandidateRecord struct {
	ID           string
	Name         string
	Tags         interface{}
	Instructions interface{}
	Content      string
	Score        float64
	// Image 資料庫裡的舊封面連結，多半已失效
	Image string
}

// Retriever 向量檢索介面。空結果不是錯誤，表示「查無匹配」。
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, preferences map[string]interface{}) ([]CandidateRecord, error)
}
