package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidhub-go/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultThumbnailWidth  = 1280
	defaultThumbnailHeight = 720
)

// Options Ingestor 配置
type Options struct {
	DefaultThumbnail string
	ThumbnailOffset  time.Duration
}

// Ingestor 媒体落盘与派生
type Ingestor struct {
	backend Backend
	prober  Prober
	opts    Options
}

// NewIngestor prober 为 nil 时缩略图与时长总是取默认值
func NewIngestor(backend Backend, prober Prober, opts Options) *Ingestor {
	if opts.DefaultThumbnail == "" {
		opts.DefaultThumbnail = "default_video.jpg"
	}
	return &Ingestor{backend: backend, prober: prober, opts: opts}
}

// DefaultThumbnail 默认缩略图文件名
func (i *Ingestor) DefaultThumbnail() string {
	return i.opts.DefaultThumbnail
}

// IsDefaultThumbnail 默认缩略图永不删除
func (i *Ingestor) IsDefaultThumbnail(name string) bool {
	return name == i.opts.DefaultThumbnail
}

// EnsureLayout 启动时调用一次：创建目录并生成默认缩略图
func (i *Ingestor) EnsureLayout(ctx context.Context) error {
	if err := i.backend.Ensure(ctx); err != nil {
		return err
	}

	exists, err := i.backend.Exists(ctx, CategoryThumbnail, i.opts.DefaultThumbnail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	data, err := blackJPEG(defaultThumbnailWidth, defaultThumbnailHeight)
	if err != nil {
		return err
	}
	err = i.backend.Put(ctx, CategoryThumbnail, i.opts.DefaultThumbnail, bytes.NewReader(data), int64(len(data)), "image/jpeg")
	if err != nil && !errors.Is(err, ErrExists) {
		return fmt.Errorf("write default thumbnail: %w", err)
	}
	logger.Info("Default thumbnail created", zap.String("name", i.opts.DefaultThumbnail))
	return nil
}

// Store 校验内容类型后以 uuid+原扩展名写入，返回文件名
func (i *Ingestor) Store(ctx context.Context, up Upload, cat Category) (string, error) {
	if !cat.Accepts(up.ContentType) {
		return "", fmt.Errorf("%w: %q for %s", ErrInvalidMediaType, up.ContentType, cat)
	}
	if up.Body == nil {
		return "", fmt.Errorf("empty upload body")
	}

	name := uuid.NewString() + extension(up.Filename)
	if err := i.backend.Put(ctx, cat, name, up.Body, up.Size, up.ContentType); err != nil {
		return "", fmt.Errorf("store %s: %w", cat, err)
	}

	logger.Info("Media stored",
		zap.String("category", string(cat)),
		zap.String("name", name),
		zap.Int64("size", up.Size),
	)
	return name, nil
}

// DeriveThumbnail 从视频截帧生成缩略图，任何失败都返回默认缩略图
func (i *Ingestor) DeriveThumbnail(ctx context.Context, videoName string) string {
	name, err := i.deriveThumbnail(ctx, videoName)
	if err != nil {
		logger.Warn("Thumbnail generation failed, using default",
			zap.String("video", videoName),
			zap.Error(err),
		)
		return i.opts.DefaultThumbnail
	}
	return name
}

func (i *Ingestor) deriveThumbnail(ctx context.Context, videoName string) (string, error) {
	if i.prober == nil {
		return "", errors.New("no prober configured")
	}

	src, cleanup, err := i.backend.LocalPath(ctx, CategoryVideo, videoName)
	if err != nil {
		return "", err
	}
	defer cleanup()

	tmpDir, err := os.MkdirTemp("", "vidhub-thumb-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	out := filepath.Join(tmpDir, "frame.jpg")
	if err := i.prober.ExtractFrame(ctx, src, out, i.opts.ThumbnailOffset); err != nil {
		return "", err
	}

	f, err := os.Open(out)
	if err != nil {
		return "", fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return "", errors.New("empty frame")
	}

	name := uuid.NewString() + ".jpg"
	if err := i.backend.Put(ctx, CategoryThumbnail, name, f, info.Size(), "image/jpeg"); err != nil {
		return "", err
	}
	return name, nil
}

// DeriveDuration 读取视频时长（秒），任何失败返回 0
func (i *Ingestor) DeriveDuration(ctx context.Context, videoName string) int {
	if i.prober == nil {
		return 0
	}

	src, cleanup, err := i.backend.LocalPath(ctx, CategoryVideo, videoName)
	if err != nil {
		logger.Warn("Duration probe skipped", zap.String("video", videoName), zap.Error(err))
		return 0
	}
	defer cleanup()

	d, err := i.prober.Duration(ctx, src)
	if err != nil || d < 0 {
		logger.Warn("Duration probe failed", zap.String("video", videoName), zap.Error(err))
		return 0
	}
	return d
}

// Delete 幂等删除；文件不存在或为默认缩略图时返回 false
func (i *Ingestor) Delete(ctx context.Context, cat Category, name string) bool {
	if name == "" {
		return false
	}
	if cat == CategoryThumbnail && i.IsDefaultThumbnail(name) {
		return false
	}
	deleted, err := i.backend.Delete(ctx, cat, name)
	if err != nil {
		logger.Error("Failed to delete media file",
			zap.String("category", string(cat)),
			zap.String("name", name),
			zap.Error(err),
		)
		return false
	}
	return deleted
}

// Open 打开文件用于下载/播放
func (i *Ingestor) Open(ctx context.Context, cat Category, name string) (*Object, error) {
	return i.backend.Open(ctx, cat, name)
}

// extension 只取客户端文件名的基名扩展
func extension(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "." || strings.ContainsAny(ext, " /") {
		return ""
	}
	return ext
}

func blackJPEG(w, h int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode default thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
