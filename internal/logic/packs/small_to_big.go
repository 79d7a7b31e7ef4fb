package packs

import (
	"context"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/config"
	"github.com/Malowking/ragpack/core/engine"
	"github.com/Malowking/ragpack/core/pack"
	"github.com/Malowking/ragpack/core/vector_store"
	einoretriever "github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// BuildSmallToBigInput 构建小到大检索包的输入
type BuildSmallToBigInput struct {
	Sources    []string
	Texts      []string
	TopK       int
	Collection string
}

// BuildSmallToBig 加载语料并构建小到大检索包，成功后替换当前实例
func BuildSmallToBig(ctx context.Context, in *BuildSmallToBigInput) (documents, parents, children int, err error) {
	docs, err := loadCorpus(ctx, in.Sources, in.Texts)
	if err != nil {
		return 0, 0, 0, err
	}

	store, err := vector_store.GetVectorStore()
	if err != nil {
		return 0, 0, 0, err
	}

	embedder, err := common.NewEmbedder(ctx, config.LoadEmbeddingSettings(ctx))
	if err != nil {
		return 0, 0, 0, err
	}

	p, err := pack.NewSmallToBigPack(ctx, docs, &pack.SmallToBigPackConfig{
		TopK:       in.TopK,
		Collection: in.Collection,
		Store:      store,
		Embedder:   embedder,
		ChatModel:  optionalChatModel(ctx),
	})
	if err != nil {
		return 0, 0, 0, err
	}

	setSmallToBigPack(p)
	graph := p.NodeGraph()
	g.Log().Infof(ctx, "small to big pack ready, documents: %d, parents: %d, children: %d",
		len(docs), len(graph.Parents), len(graph.Children))
	return len(docs), len(graph.Parents), len(graph.Children), nil
}

// RetrieveSmallToBig 小到大检索，top_k/score 为0时使用 pack 配置
func RetrieveSmallToBig(ctx context.Context, question string, topK int, score float64) ([]*schema.Document, error) {
	p, err := GetSmallToBigPack()
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

// QuerySmallToBig 小到大检索并生成答案
func QuerySmallToBig(ctx context.Context, question string) (*engine.QueryResult, error) {
	p, err := GetSmallToBigPack()
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, question)
}

// SmallToBigModules 当前 pack 的模块名列表
func SmallToBigModules() ([]string, error) {
	p, err := GetSmallToBigPack()
	if err != nil {
		return nil, err
	}
	return moduleNames(p.GetModules()), nil
}
