package file_store

import (
	"context"
	"io"
	"net/http"
	"path"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/errors"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStoreConfig S3 兼容对象存储配置
type ObjectStoreConfig struct {
	Client     *minio.Client
	BucketName string
}

var objectStoreConfig ObjectStoreConfig

// InitObjectStore 初始化 S3 兼容对象存储
func InitObjectStore(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, ssl bool) error {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: ssl,
	})
	if err != nil {
		return errors.Newf(errors.ErrInternalError, "failed to create S3 client: %v", err)
	}

	// 设置全局配置
	objectStoreConfig = ObjectStoreConfig{
		Client:     client,
		BucketName: bucketName,
	}

	// 创建 bucket，如果已存在则跳过
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return errors.Newf(errors.ErrInternalError, "failed to check if bucket exists: %v", err)
	}
	if exists {
		g.Log().Printf(ctx, "Bucket '%s' already exists, skipping creation.", bucketName)
		return nil
	}

	err = client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: ""})
	if err != nil {
		return errors.Newf(errors.ErrInternalError, "failed to create bucket: %v", err)
	}

	g.Log().Printf(ctx, "Created bucket '%s'", bucketName)
	return nil
}

// GetObjectStoreConfig 获取对象存储配置
func GetObjectStoreConfig() *ObjectStoreConfig {
	return &objectStoreConfig
}

// SaveFileToObjectStore 上传文件到对象存储，对象路径为 corpus/集合名/文件名
func SaveFileToObjectStore(ctx context.Context, client *minio.Client, bucketName string, collection string, fileName string, file io.ReadSeeker, size int64) (objectKey string, err error) {
	objectKey = path.Join("corpus", collection, fileName)

	// 内容类型优先按扩展名判断，未知扩展名再读文件头嗅探
	contentType := common.GetMimeTypeOrDefault(path.Ext(fileName), "")
	if contentType == "" {
		buffer := make([]byte, 512)
		n, err := file.Read(buffer)
		if err != nil && err != io.EOF {
			g.Log().Errorf(ctx, "Failed to read file header: %v", err)
			return "", errors.Newf(errors.ErrFileReadFailed, "failed to read file header: %v", err)
		}

		// 重置文件指针到开头
		if _, err = file.Seek(0, io.SeekStart); err != nil {
			g.Log().Errorf(ctx, "Failed to seek file to beginning: %v", err)
			return "", errors.Newf(errors.ErrFileReadFailed, "failed to seek file to beginning: %v", err)
		}

		contentType = http.DetectContentType(buffer[:n])
	}

	// 上传到对象存储
	_, err = client.PutObject(ctx, bucketName, objectKey, file, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		g.Log().Errorf(ctx, "Failed to upload file to object storage: %v", err)
		return "", errors.Newf(errors.ErrFileUploadFailed, "failed to upload to object storage: %v", err)
	}

	g.Log().Infof(ctx, "File uploaded to object storage: bucket=%s, key=%s", bucketName, objectKey)
	return objectKey, nil
}

// ReadObject 读取对象存储中指定对象的完整内容
func ReadObject(ctx context.Context, client *minio.Client, bucketName, objectName string) ([]byte, error) {
	obj, err := client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to get object '%s': %v", objectName, err)
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Newf(errors.ErrFileReadFailed, "failed to read object '%s': %v", objectName, err)
	}
	return content, nil
}

// ListObjects 列举 bucket 中指定前缀下的所有对象
func ListObjects(ctx context.Context, client *minio.Client, bucketName, prefix string) ([]minio.ObjectInfo, error) {
	var objects []minio.ObjectInfo

	objectCh := client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, errors.Newf(errors.ErrFileReadFailed, "list objects failed: %v", object.Err)
		}
		objects = append(objects, object)
	}

	return objects, nil
}
