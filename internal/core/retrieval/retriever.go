package retrieval

import (
	"context"
	"fmt"

	"aichef-rag/internal/infrastructure/config"
	"aichef-rag/internal/pkg/common"

	"go.uber.org/zap"
)

// VectorRetriever 向量檢索轉接器：先向量化查詢，再打向量庫。
type VectorRetriever struct {
	embed *EmbeddingClient
	store *QdrantStore
}

// NewVectorRetriever 創建向量檢索轉接器
func NewVectorRetriever(cfg *config.Config) *VectorRetriever {
	return &VectorRetriever{
		embed: NewEmbeddingClient(cfg),
		store: NewQdrantStore(cfg),
	}
}

// Retrieve 依語義相似度返回至多 topK 筆候選，按分數遞減排序。
func (r *VectorRetriever) Retrieve(ctx context.Context, query string, topK int, preferences map[string]interface{}) ([]CandidateRecord, error) {
	vector, err := r.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	records, err := r.store.Search(ctx, vector, topK, preferences)
	if err != nil {
		return nil, err
	}

	common.LogInfo("檢索完成",
		zap.Int("top_k", topK),
		zap.Int("命中數", len(records)),
	)

	return records, nil
}
