// Package media 负责媒体文件的落盘、缩略图/时长派生与删除。
package media

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// Category 媒体文件类别，决定存放位置与允许的内容类型
type Category string

const (
	CategoryVideo          Category = "video"
	CategoryThumbnail      Category = "thumbnail"
	CategoryProfilePicture Category = "profile_picture"
	CategoryBanner         Category = "banner"
)

// Categories 全部类别
var Categories = []Category{CategoryVideo, CategoryThumbnail, CategoryProfilePicture, CategoryBanner}

// Accepts 检查声明的内容类型是否与类别匹配
func (c Category) Accepts(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch c {
	case CategoryVideo:
		return strings.HasPrefix(ct, "video/")
	case CategoryThumbnail, CategoryProfilePicture, CategoryBanner:
		return strings.HasPrefix(ct, "image/")
	}
	return false
}

var (
	ErrInvalidMediaType = errors.New("invalid media type")
	ErrNotFound         = errors.New("media file not found")
	ErrExists           = errors.New("media file already exists")
	ErrInvalidName      = errors.New("invalid media file name")
)

// Upload 待存储的上传文件
type Upload struct {
	Filename    string
	ContentType string
	Size        int64 // 未知时为 -1
	Body        io.Reader
}

// Object 打开的媒体文件
type Object struct {
	Body        io.ReadSeekCloser
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Backend 媒体存储后端（本地目录或对象存储）
type Backend interface {
	// Ensure 准备目录或桶
	Ensure(ctx context.Context) error
	// Put 写入新文件，同名已存在时返回 ErrExists
	Put(ctx context.Context, cat Category, name string, r io.Reader, size int64, contentType string) error
	// Delete 删除文件，不存在时返回 false
	Delete(ctx context.Context, cat Category, name string) (bool, error)
	Exists(ctx context.Context, cat Category, name string) (bool, error)
	Open(ctx context.Context, cat Category, name string) (*Object, error)
	// LocalPath 返回可供外部工具读取的本地路径，用完调用 cleanup
	LocalPath(ctx context.Context, cat Category, name string) (path string, cleanup func(), err error)
}

// Prober 外部视频工具
type Prober interface {
	Duration(ctx context.Context, videoPath string) (int, error)
	ExtractFrame(ctx context.Context, videoPath, outPath string, offset time.Duration) error
}

// validName 只接受不带目录成分的文件名
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}
