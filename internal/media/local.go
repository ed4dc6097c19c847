package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
)

// LocalBackend 按类别划分目录的本地文件存储
type LocalBackend struct {
	dirs map[Category]string
}

// NewLocalBackend 创建本地存储，dirs 需覆盖全部类别
func NewLocalBackend(dirs map[Category]string) (*LocalBackend, error) {
	for _, c := range Categories {
		if dirs[c] == "" {
			return nil, fmt.Errorf("no directory configured for %s", c)
		}
	}
	return &LocalBackend{dirs: dirs}, nil
}

func (b *LocalBackend) path(cat Category, name string) (string, error) {
	dir, ok := b.dirs[cat]
	if !ok {
		return "", fmt.Errorf("unknown media category %q", cat)
	}
	if !validName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(dir, name), nil
}

func (b *LocalBackend) Ensure(_ context.Context) error {
	for _, c := range Categories {
		if err := os.MkdirAll(b.dirs[c], 0755); err != nil {
			return fmt.Errorf("create %s dir: %w", c, err)
		}
	}
	return nil
}

func (b *LocalBackend) Put(_ context.Context, cat Category, name string, r io.Reader, _ int64, _ string) error {
	p, err := b.path(cat, name)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrExists
		}
		return fmt.Errorf("create %s: %w", p, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("write %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return fmt.Errorf("close %s: %w", p, err)
	}
	return nil
}

func (b *LocalBackend) Delete(_ context.Context, cat Category, name string) (bool, error) {
	p, err := b.path(cat, name)
	if err != nil {
		return false, nil
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *LocalBackend) Exists(_ context.Context, cat Category, name string) (bool, error) {
	p, err := b.path(cat, name)
	if err != nil {
		return false, nil
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (b *LocalBackend) Open(_ context.Context, cat Category, name string) (*Object, error) {
	p, err := b.path(cat, name)
	if err != nil {
		return nil, ErrNotFound
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, ErrNotFound
	}
	return &Object{
		Body:        f,
		Size:        info.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		ModTime:     info.ModTime(),
	}, nil
}

func (b *LocalBackend) LocalPath(ctx context.Context, cat Category, name string) (string, func(), error) {
	p, err := b.path(cat, name)
	if err != nil {
		return "", nil, err
	}
	ok, err := b.Exists(ctx, cat, name)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, ErrNotFound
	}
	return p, func() {}, nil
}
