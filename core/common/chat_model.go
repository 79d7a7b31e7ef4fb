package common

import (
	"context"

	"github.com/Malowking/ragpack/core/errors"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/gogf/gf/v2/frame/g"
)

var (
	chatModel    einoModel.BaseChatModel
	rewriteModel einoModel.BaseChatModel
)

// GetChatModel 返回用于答案合成的对话模型，按 chat.provider 选择 openai/qwen
func GetChatModel(ctx context.Context, cfg *openai.ChatModelConfig) (einoModel.BaseChatModel, error) {
	if chatModel != nil {
		return chatModel, nil
	}
	if cfg == nil {
		cfg = &openai.ChatModelConfig{}
		err := g.Cfg().MustGet(ctx, "chat").Scan(cfg)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Model == "" {
		return nil, errors.New(errors.ErrModelNotConfigured, "chat.model is not configured")
	}

	cm, err := newChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	chatModel = cm
	return cm, nil
}

// GetRewriteModel 返回用于查询改写的模型；未单独配置 rewrite 段时复用 chat 配置
func GetRewriteModel(ctx context.Context, cfg *openai.ChatModelConfig) (einoModel.BaseChatModel, error) {
	if rewriteModel != nil {
		return rewriteModel, nil
	}
	if cfg == nil {
		cfg = &openai.ChatModelConfig{}
		section := "rewrite"
		if g.Cfg().MustGet(ctx, "rewrite.model", "").String() == "" {
			section = "chat"
		}
		err := g.Cfg().MustGet(ctx, section).Scan(cfg)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Model == "" {
		return nil, errors.New(errors.ErrModelNotConfigured, "rewrite model is not configured")
	}

	cm, err := newChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rewriteModel = cm
	return cm, nil
}

func newChatModel(ctx context.Context, cfg *openai.ChatModelConfig) (einoModel.BaseChatModel, error) {
	provider := g.Cfg().MustGet(ctx, "chat.provider", "openai").String()
	switch provider {
	case "qwen":
		return qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	default:
		return openai.NewChatModel(ctx, cfg)
	}
}
