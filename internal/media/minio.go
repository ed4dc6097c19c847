package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	infraMinio "vidhub-go/internal/infra/minio"

	"github.com/minio/minio-go/v7"
)

// MinIOBackend 把媒体文件存为 <bucket>/<category>/<name>
type MinIOBackend struct {
	client *minio.Client
	bucket string
}

func NewMinIOBackend(client *minio.Client, bucket string) *MinIOBackend {
	return &MinIOBackend{client: client, bucket: bucket}
}

func objectName(cat Category, name string) string {
	return string(cat) + "/" + name
}

func (b *MinIOBackend) Ensure(ctx context.Context) error {
	return infraMinio.EnsureBucket(ctx, b.client, b.bucket)
}

func (b *MinIOBackend) Put(ctx context.Context, cat Category, name string, r io.Reader, size int64, contentType string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	exists, err := b.Exists(ctx, cat, name)
	if err != nil {
		return err
	}
	if exists {
		return ErrExists
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	_, err = infraMinio.UploadFile(ctx, b.client, b.bucket, objectName(cat, name), r, size, contentType)
	return err
}

func (b *MinIOBackend) Delete(ctx context.Context, cat Category, name string) (bool, error) {
	exists, err := b.Exists(ctx, cat, name)
	if err != nil || !exists {
		return false, err
	}
	if err := b.client.RemoveObject(ctx, b.bucket, objectName(cat, name), minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("remove object: %w", err)
	}
	return true, nil
}

func (b *MinIOBackend) Exists(ctx context.Context, cat Category, name string) (bool, error) {
	if !validName(name) {
		return false, nil
	}
	_, err := b.client.StatObject(ctx, b.bucket, objectName(cat, name), minio.StatObjectOptions{})
	if err != nil {
		if infraMinio.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

func (b *MinIOBackend) Open(ctx context.Context, cat Category, name string) (*Object, error) {
	if !validName(name) {
		return nil, ErrNotFound
	}
	obj, err := b.client.GetObject(ctx, b.bucket, objectName(cat, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if infraMinio.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return &Object{
		Body:        obj,
		Size:        info.Size,
		ContentType: info.ContentType,
		ModTime:     info.LastModified,
	}, nil
}

// LocalPath 下载到临时文件供 ffmpeg 读取
func (b *MinIOBackend) LocalPath(ctx context.Context, cat Category, name string) (string, func(), error) {
	if !validName(name) {
		return "", nil, ErrInvalidName
	}
	dir, err := os.MkdirTemp("", "vidhub-media-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	p := filepath.Join(dir, name)
	if err := b.client.FGetObject(ctx, b.bucket, objectName(cat, name), p, minio.GetObjectOptions{}); err != nil {
		cleanup()
		if infraMinio.IsNotFound(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("download object: %w", err)
	}
	return p, cleanup, nil
}
