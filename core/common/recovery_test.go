package common

import (
	"context"
	"testing"
)

func TestRecoverPanic(t *testing.T) {
	ctx := context.Background()

	t.Run("正常执行不会panic", func(t *testing.T) {
		defer RecoverPanic(ctx, "test-normal")
		// 正常执行，不会panic
		_ = 1 + 1
	})

	t.Run("捕获panic", func(t *testing.T) {
		// RecoverPanic 需要在 defer 中调用才能捕获 panic
		// 如果没有被捕获，panic会继续向上传播导致测试失败
		func() {
			defer RecoverPanic(ctx, "test-panic")
			panic("test panic")
		}()
	})
}
