package common

import (
	"context"
	"runtime/debug"

	"github.com/gogf/gf/v2/frame/g"
)

// RecoverPanic 通用 panic 恢复函数
// 在 defer 中调用，捕获并记录 panic 信息（包含完整堆栈）
func RecoverPanic(ctx context.Context, taskName string) {
	if r := recover(); r != nil {
		// 获取完整堆栈信息
		stack := debug.Stack()

		// 记录详细的 panic 信息
		g.Log().Criticalf(ctx,
			"[PANIC RECOVERED] Task: %s\nError: %v\nStack Trace:\n%s",
			taskName, r, string(stack))
	}
}
