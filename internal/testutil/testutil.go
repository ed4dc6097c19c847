// Package testutil 提供测试共用的数据库、媒体目录与假探测器。
package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vidhub-go/internal/config"
	"vidhub-go/internal/infra/database"
	"vidhub-go/internal/media"
	"vidhub-go/internal/model"

	"gorm.io/gorm"
)

// NewDB 在 t.TempDir() 下创建已迁移的 sqlite 数据库
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// FailCreates 让后续对 table 的 INSERT 失败，用于模拟持久化错误
func FailCreates(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	name := "testutil:fail_create_" + table
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errors.New("simulated insert failure"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Callback().Create().Remove(name)
	})
}

// MustCreateUser 直接插入用户
func MustCreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "x",
		IsActive:       true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// MustCreateVideo 直接插入视频
func MustCreateVideo(t *testing.T, db *gorm.DB, uploaderID int64, title string, private bool) *model.Video {
	t.Helper()
	v := &model.Video{
		UploaderID: uploaderID,
		Title:      title,
		FilePath:   title + ".mp4",
		IsPrivate:  private,
	}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create video %s: %v", title, err)
	}
	return v
}

// MediaDirs 返回 root 下按类别划分的目录
func MediaDirs(root string) map[media.Category]string {
	return map[media.Category]string{
		media.CategoryVideo:          filepath.Join(root, "videos"),
		media.CategoryThumbnail:      filepath.Join(root, "thumbnails"),
		media.CategoryProfilePicture: filepath.Join(root, "profile_pictures"),
		media.CategoryBanner:         filepath.Join(root, "banners"),
	}
}

// NewIngestor 创建基于临时目录的媒体处理器
func NewIngestor(t *testing.T, prober media.Prober) (*media.Ingestor, map[media.Category]string) {
	t.Helper()
	dirs := MediaDirs(t.TempDir())
	backend, err := media.NewLocalBackend(dirs)
	if err != nil {
		t.Fatalf("local backend: %v", err)
	}
	ing := media.NewIngestor(backend, prober, media.Options{
		DefaultThumbnail: "default_video.jpg",
		ThumbnailOffset:  5 * time.Second,
	})
	if err := ing.EnsureLayout(context.Background()); err != nil {
		t.Fatalf("ensure layout: %v", err)
	}
	return ing, dirs
}

// CountFiles 统计目录下的文件数
func CountFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	return len(entries)
}

// FakeProber 可编程的 media.Prober
type FakeProber struct {
	mu          sync.Mutex
	DurationVal int
	Fail        bool
	Calls       int
}

func (p *FakeProber) Duration(_ context.Context, _ string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls++
	if p.Fail {
		return 0, errors.New("fake prober failure")
	}
	return p.DurationVal, nil
}

func (p *FakeProber) ExtractFrame(_ context.Context, _, outPath string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls++
	if p.Fail {
		return errors.New("fake prober failure")
	}
	return os.WriteFile(outPath, []byte("fake-jpeg-frame"), 0644)
}
