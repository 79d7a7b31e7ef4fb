package packs

import (
	"context"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/config"
	"github.com/Malowking/ragpack/core/engine"
	"github.com/Malowking/ragpack/core/pack"
	"github.com/Malowking/ragpack/core/retriever"
	"github.com/Malowking/ragpack/core/vector_store"
	einoretriever "github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// BuildFusionInput 构建混合检索包的输入
type BuildFusionInput struct {
	Sources     []string
	Texts       []string
	ChunkSize   int
	OverlapSize int
	Mode        string
	VectorTopK  int
	BM25TopK    int
	FusionTopK  int
	NumQueries  int
	Collection  string
}

// BuildFusion 加载语料并构建混合检索包，成功后替换当前实例
func BuildFusion(ctx context.Context, in *BuildFusionInput) (documents, chunks int, err error) {
	docs, err := loadCorpus(ctx, in.Sources, in.Texts)
	if err != nil {
		return 0, 0, err
	}

	store, err := vector_store.GetVectorStore()
	if err != nil {
		return 0, 0, err
	}

	embedder, err := common.NewEmbedder(ctx, config.LoadEmbeddingSettings(ctx))
	if err != nil {
		return 0, 0, err
	}

	// 请求未指定的参数先落到配置文件默认值，pack 内部兜底硬编码默认
	defaults := config.LoadFusionDefaults(ctx)
	if in.ChunkSize == 0 {
		in.ChunkSize = defaults.ChunkSize
	}
	if in.Mode == "" {
		in.Mode = defaults.Mode
	}
	if in.VectorTopK == 0 {
		in.VectorTopK = defaults.VectorTopK
	}
	if in.BM25TopK == 0 {
		in.BM25TopK = defaults.BM25TopK
	}
	if in.FusionTopK == 0 {
		in.FusionTopK = defaults.FusionTopK
	}
	if in.NumQueries == 0 {
		in.NumQueries = defaults.NumQueries
	}

	p, err := pack.HybridFusionPackFromDocuments(ctx, docs, &pack.HybridFusionPackConfig{
		ChunkSize:   in.ChunkSize,
		OverlapSize: in.OverlapSize,
		Mode:        retriever.FusionMode(in.Mode),
		VectorTopK:  in.VectorTopK,
		BM25TopK:    in.BM25TopK,
		FusionTopK:  in.FusionTopK,
		NumQueries:  in.NumQueries,
		Collection:  in.Collection,
		Store:       store,
		Embedder:    embedder,
		ChatModel:   optionalChatModel(ctx),
	})
	if err != nil {
		return 0, 0, err
	}

	setFusionPack(p)
	g.Log().Infof(ctx, "fusion pack ready, documents: %d, chunks: %d", len(docs), p.ChunkCount())
	return len(docs), p.ChunkCount(), nil
}

// RetrieveFusion 融合检索，top_k/score 为0时使用 pack 配置
func RetrieveFusion(ctx context.Context, question string, topK int, score float64) ([]*schema.Document, error) {
	p, err := GetFusionPack()
	if err != nil {
		return nil, err
	}
	if topK <= 0 && score <= 0 {
		return p.Retrieve(ctx, question)
	}

	var opts []einoretriever.Option
	if topK > 0 {
		opts = append(opts, einoretriever.WithTopK(topK))
	}
	if score > 0 {
		opts = append(opts, einoretriever.WithScoreThreshold(score))
	}
	return p.AsRetriever().Retrieve(ctx, question, opts...)
}

// QueryFusion 融合检索并生成答案
func QueryFusion(ctx context.Context, question string) (*engine.QueryResult, error) {
	p, err := GetFusionPack()
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, question)
}

// FusionModules 当前 pack 的模块名列表
func FusionModules() ([]string, error) {
	p, err := GetFusionPack()
	if err != nil {
		return nil, err
	}
	return moduleNames(p.GetModules()), nil
}
