package documents

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/errors"
	"github.com/Malowking/ragpack/core/file_store"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/ghttp"
)

// UploadResult 上传结果，URI 可直接作为 pack build 的 source
type UploadResult struct {
	URI      string
	FileName string
	Size     int64
}

// FileInfo 已存储的语料文件
type FileInfo struct {
	Name string
	URI  string
	Size int64
}

// Upload 保存上传文件到当前配置的存储后端
func Upload(ctx context.Context, collection string, file *ghttp.UploadFile) (*UploadResult, error) {
	if file == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "file is required")
	}
	// 集合名同时用作存储目录，校验防止路径穿越
	if !common.ValidateCollectionName(collection) {
		return nil, errors.Newf(errors.ErrInvalidParameter, "invalid collection name: %s", collection)
	}

	fileName := filepath.Base(file.Filename)

	f, err := file.Open()
	if err != nil {
		g.Log().Errorf(ctx, "Failed to open upload file: %v", err)
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to open upload file: %v", err)
	}
	defer f.Close()

	switch file_store.GetStorageType() {
	case file_store.StorageTypeS3:
		cfg := file_store.GetObjectStoreConfig()
		key, err := file_store.SaveFileToObjectStore(ctx, cfg.Client, cfg.BucketName, collection, fileName, f, file.Size)
		if err != nil {
			return nil, err
		}
		return &UploadResult{
			URI:      fmt.Sprintf("s3://%s/%s", cfg.BucketName, key),
			FileName: fileName,
			Size:     file.Size,
		}, nil
	default:
		finalPath, err := file_store.SaveFileToLocal(ctx, collection, fileName, f)
		if err != nil {
			return nil, err
		}
		return &UploadResult{
			URI:      finalPath,
			FileName: fileName,
			Size:     file.Size,
		}, nil
	}
}

// List 列举集合下已存储的语料文件
func List(ctx context.Context, collection string) ([]FileInfo, error) {
	if !common.ValidateCollectionName(collection) {
		return nil, errors.Newf(errors.ErrInvalidParameter, "invalid collection name: %s", collection)
	}

	switch file_store.GetStorageType() {
	case file_store.StorageTypeS3:
		cfg := file_store.GetObjectStoreConfig()
		prefix := path.Join("corpus", collection) + "/"
		objects, err := file_store.ListObjects(ctx, cfg.Client, cfg.BucketName, prefix)
		if err != nil {
			return nil, err
		}

		files := make([]FileInfo, 0, len(objects))
		for _, obj := range objects {
			files = append(files, FileInfo{
				Name: path.Base(obj.Key),
				URI:  fmt.Sprintf("s3://%s/%s", cfg.BucketName, obj.Key),
				Size: obj.Size,
			})
		}
		return files, nil
	default:
		paths, err := file_store.ListLocalFiles(ctx, collection)
		if err != nil {
			return nil, err
		}

		files := make([]FileInfo, 0, len(paths))
		for _, p := range paths {
			info := FileInfo{Name: filepath.Base(p), URI: p}
			if stat, err := os.Stat(p); err == nil {
				info.Size = stat.Size()
			}
			files = append(files, info)
		}
		return files, nil
	}
}
