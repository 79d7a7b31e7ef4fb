package packs

import (
	"context"
	"sort"
	"sync"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/errors"
	"github.com/Malowking/ragpack/core/pack"
	"github.com/cloudwego/eino/components/model"
	"github.com/gogf/gf/v2/frame/g"
)

// 当前已构建的 pack 实例，每种各持有一个。
// 重建即整体替换，旧实例在途的检索继续用旧索引跑完。
var (
	mu             sync.RWMutex
	fusionPack     *pack.HybridFusionPack
	smallToBigPack *pack.SmallToBigPack
)

// GetFusionPack 获取当前混合检索包，未构建时返回业务错误
func GetFusionPack() (*pack.HybridFusionPack, error) {
	mu.RLock()
	defer mu.RUnlock()
	if fusionPack == nil {
		return nil, errors.New(errors.ErrPackNotBuilt, "fusion pack has not been built yet, call build first")
	}
	return fusionPack, nil
}

// GetSmallToBigPack 获取当前小到大检索包，未构建时返回业务错误
func GetSmallToBigPack() (*pack.SmallToBigPack, error) {
	mu.RLock()
	defer mu.RUnlock()
	if smallToBigPack == nil {
		return nil, errors.New(errors.ErrPackNotBuilt, "small to big pack has not been built yet, call build first")
	}
	return smallToBigPack, nil
}

func setFusionPack(p *pack.HybridFusionPack) {
	mu.Lock()
	fusionPack = p
	mu.Unlock()
}

func setSmallToBigPack(p *pack.SmallToBigPack) {
	mu.Lock()
	smallToBigPack = p
	mu.Unlock()
}

// optionalChatModel 聊天模型缺失只降级问答能力，不阻塞建索引
func optionalChatModel(ctx context.Context) model.BaseChatModel {
	cm, err := common.GetChatModel(ctx, nil)
	if err != nil {
		g.Log().Warningf(ctx, "chat model unavailable, query endpoints will be retrieval-only: %v", err)
		return nil
	}
	return cm
}

// moduleNames 提取模块名列表，顺序稳定
func moduleNames(modules map[string]any) []string {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
