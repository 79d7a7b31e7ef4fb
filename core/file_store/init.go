package file_store

import (
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gctx"
)

// InitStorage 初始化存储系统
func InitStorage() {
	ctx := gctx.New()

	// 获取存储类型配置，默认为 local
	storageTypeStr := g.Cfg().MustGet(ctx, "storage.type", "local").String()

	switch storageTypeStr {
	case "s3":
		// 检查对象存储配置是否存在
		endpoint := g.Cfg().MustGet(ctx, "s3.endpoint", "").String()
		if endpoint == "" {
			// 如果没有配置对象存储，使用本地存储
			SetStorageType(StorageTypeLocal)
			g.Log().Infof(ctx, "S3 storage not configured, using local storage")
			InitUploadDirectories()
			return
		}

		accessKey := g.Cfg().MustGet(ctx, "s3.accessKey").String()
		secretKey := g.Cfg().MustGet(ctx, "s3.secretKey").String()
		bucketName := g.Cfg().MustGet(ctx, "s3.bucketName").String()
		ssl := g.Cfg().MustGet(ctx, "s3.ssl", false).Bool()

		err := InitObjectStore(ctx, endpoint, accessKey, secretKey, bucketName, ssl)
		if err != nil {
			g.Log().Fatalf(ctx, "failed to initialize object storage: %v", err)
			return
		}

		SetStorageType(StorageTypeS3)
		g.Log().Infof(ctx, "Using S3 object storage as configured")
		// 初始化 upload 目录结构
		InitUploadDirectories()
		return
	default:
		// 默认使用本地存储
		SetStorageType(StorageTypeLocal)
		g.Log().Infof(ctx, "Using local storage as configured")
		// 初始化 upload 目录结构
		InitUploadDirectories()
		return
	}
}
