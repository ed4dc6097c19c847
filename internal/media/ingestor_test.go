package media

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type stubProber struct {
	duration    int
	durationErr error
	frameErr    error
	frame       []byte
	gotOffset   time.Duration
}

func (p *stubProber) Duration(_ context.Context, _ string) (int, error) {
	return p.duration, p.durationErr
}

func (p *stubProber) ExtractFrame(_ context.Context, _, out string, offset time.Duration) error {
	p.gotOffset = offset
	if p.frameErr != nil {
		return p.frameErr
	}
	return os.WriteFile(out, p.frame, 0644)
}

func newTestIngestor(t *testing.T, prober Prober) (*Ingestor, map[Category]string) {
	t.Helper()
	root := t.TempDir()
	dirs := map[Category]string{
		CategoryVideo:          filepath.Join(root, "videos"),
		CategoryThumbnail:      filepath.Join(root, "thumbnails"),
		CategoryProfilePicture: filepath.Join(root, "profile_pictures"),
		CategoryBanner:         filepath.Join(root, "banners"),
	}
	backend, err := NewLocalBackend(dirs)
	if err != nil {
		t.Fatalf("NewLocalBackend: %v", err)
	}
	ing := NewIngestor(backend, prober, Options{DefaultThumbnail: "default_video.jpg", ThumbnailOffset: 5 * time.Second})
	if err := ing.EnsureLayout(context.Background()); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	return ing, dirs
}

func upload(name, contentType, body string) Upload {
	return Upload{Filename: name, ContentType: contentType, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestEnsureLayoutCreatesDefaultThumbnail(t *testing.T) {
	_, dirs := newTestIngestor(t, nil)

	for cat, dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s dir missing: %v", cat, err)
		}
	}

	f, err := os.Open(filepath.Join(dirs[CategoryThumbnail], "default_video.jpg"))
	if err != nil {
		t.Fatalf("default thumbnail missing: %v", err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatalf("default thumbnail is not a jpeg: %v", err)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("default thumbnail is %dx%d", cfg.Width, cfg.Height)
	}
}

func TestEnsureLayoutIsIdempotent(t *testing.T) {
	ing, _ := newTestIngestor(t, nil)
	if err := ing.EnsureLayout(context.Background()); err != nil {
		t.Errorf("second EnsureLayout: %v", err)
	}
}

func TestStoreValidatesContentType(t *testing.T) {
	ing, dirs := newTestIngestor(t, nil)
	ctx := context.Background()

	tests := []struct {
		cat Category
		ct  string
		ok  bool
	}{
		{CategoryVideo, "video/mp4", true},
		{CategoryVideo, "image/png", false},
		{CategoryVideo, "", false},
		{CategoryThumbnail, "image/jpeg", true},
		{CategoryThumbnail, "video/mp4", false},
		{CategoryProfilePicture, "image/png", true},
		{CategoryBanner, "application/octet-stream", false},
	}

	for _, tt := range tests {
		name, err := ing.Store(ctx, upload("x.bin", tt.ct, "data"), tt.cat)
		if tt.ok {
			if err != nil {
				t.Errorf("Store(%s, %q): %v", tt.cat, tt.ct, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidMediaType) {
			t.Errorf("Store(%s, %q) err = %v, want ErrInvalidMediaType", tt.cat, tt.ct, err)
		}
		if name != "" {
			t.Errorf("rejected store returned name %q", name)
		}
	}

	// 拒绝的上传不落盘
	entries, _ := os.ReadDir(dirs[CategoryVideo])
	if len(entries) != 1 {
		t.Errorf("video dir has %d files, want 1", len(entries))
	}
}

func TestStoreUniqueNamesKeepExtension(t *testing.T) {
	ing, dirs := newTestIngestor(t, nil)
	ctx := context.Background()

	a, err := ing.Store(ctx, upload("../../etc/Clip.MP4", "video/mp4", "aaa"), CategoryVideo)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	b, err := ing.Store(ctx, upload("Clip.MP4", "video/mp4", "bbb"), CategoryVideo)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if a == b {
		t.Fatal("names must be unique")
	}
	for _, n := range []string{a, b} {
		if !strings.HasSuffix(n, ".mp4") || strings.Contains(n, "/") {
			t.Errorf("unexpected name %q", n)
		}
	}

	data, err := os.ReadFile(filepath.Join(dirs[CategoryVideo], a))
	if err != nil || string(data) != "aaa" {
		t.Errorf("content = %q, %v", data, err)
	}
}

func TestLocalBackendNeverOverwrites(t *testing.T) {
	ing, _ := newTestIngestor(t, nil)
	err := ing.backend.Put(context.Background(), CategoryThumbnail, "default_video.jpg", strings.NewReader("x"), 1, "image/jpeg")
	if !errors.Is(err, ErrExists) {
		t.Errorf("Put over existing file err = %v, want ErrExists", err)
	}
}

func TestDeriveThumbnail(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		prober := &stubProber{frame: []byte("jpegdata")}
		ing, dirs := newTestIngestor(t, prober)
		video, _ := ing.Store(ctx, upload("a.mp4", "video/mp4", "v"), CategoryVideo)

		name := ing.DeriveThumbnail(ctx, video)
		if name == "default_video.jpg" || !strings.HasSuffix(name, ".jpg") {
			t.Fatalf("name = %q", name)
		}
		if prober.gotOffset != 5*time.Second {
			t.Errorf("offset = %v", prober.gotOffset)
		}
		data, err := os.ReadFile(filepath.Join(dirs[CategoryThumbnail], name))
		if err != nil || string(data) != "jpegdata" {
			t.Errorf("thumbnail content = %q, %v", data, err)
		}
	})

	fallbacks := map[string]Prober{
		"no prober":    nil,
		"tool failure": &stubProber{frameErr: errors.New("exit status 1")},
		"empty output": &stubProber{frame: []byte{}},
	}
	for name, prober := range fallbacks {
		t.Run(name, func(t *testing.T) {
			ing, _ := newTestIngestor(t, prober)
			video, _ := ing.Store(ctx, upload("a.mp4", "video/mp4", "v"), CategoryVideo)
			if got := ing.DeriveThumbnail(ctx, video); got != "default_video.jpg" {
				t.Errorf("got %q, want default", got)
			}
		})
	}

	t.Run("missing video", func(t *testing.T) {
		ing, _ := newTestIngestor(t, &stubProber{frame: []byte("x")})
		if got := ing.DeriveThumbnail(ctx, "nope.mp4"); got != "default_video.jpg" {
			t.Errorf("got %q, want default", got)
		}
	})
}

func TestDeriveDuration(t *testing.T) {
	ctx := context.Background()

	ing, _ := newTestIngestor(t, &stubProber{duration: 65})
	video, _ := ing.Store(ctx, upload("a.mp4", "video/mp4", "v"), CategoryVideo)
	if got := ing.DeriveDuration(ctx, video); got != 65 {
		t.Errorf("got %d, want 65", got)
	}

	ing, _ = newTestIngestor(t, &stubProber{durationErr: errors.New("no duration")})
	video, _ = ing.Store(ctx, upload("a.mp4", "video/mp4", "v"), CategoryVideo)
	if got := ing.DeriveDuration(ctx, video); got != 0 {
		t.Errorf("got %d, want 0", got)
	}

	ing, _ = newTestIngestor(t, nil)
	if got := ing.DeriveDuration(ctx, "missing.mp4"); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestDeleteIsIdempotentAndSparesDefault(t *testing.T) {
	ing, dirs := newTestIngestor(t, nil)
	ctx := context.Background()

	name, _ := ing.Store(ctx, upload("a.png", "image/png", "p"), CategoryThumbnail)
	if !ing.Delete(ctx, CategoryThumbnail, name) {
		t.Error("first delete should report true")
	}
	if ing.Delete(ctx, CategoryThumbnail, name) {
		t.Error("second delete should report false")
	}
	if ing.Delete(ctx, CategoryThumbnail, "default_video.jpg") {
		t.Error("default thumbnail must not be deleted")
	}
	if _, err := os.Stat(filepath.Join(dirs[CategoryThumbnail], "default_video.jpg")); err != nil {
		t.Errorf("default thumbnail gone: %v", err)
	}
	if ing.Delete(ctx, CategoryVideo, "../thumbnails/default_video.jpg") {
		t.Error("path traversal must not delete anything")
	}
}

func TestOpen(t *testing.T) {
	ing, _ := newTestIngestor(t, nil)
	ctx := context.Background()

	name, _ := ing.Store(ctx, upload("a.mp4", "video/mp4", "hello"), CategoryVideo)
	obj, err := ing.Open(ctx, CategoryVideo, name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer obj.Body.Close()

	data, _ := io.ReadAll(obj.Body)
	if !bytes.Equal(data, []byte("hello")) || obj.Size != 5 {
		t.Errorf("data = %q size = %d", data, obj.Size)
	}

	for _, bad := range []string{"missing.mp4", "../videos/" + name, ""} {
		if _, err := ing.Open(ctx, CategoryVideo, bad); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open(%q) err = %v, want ErrNotFound", bad, err)
		}
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"a.MP4":         ".mp4",
		"noext":         "",
		"":              "",
		`C:\x\clip.mov`: ".mov",
		"dir/pic.jpeg":  ".jpeg",
	}
	for in, want := range cases {
		if got := extension(in); got != want {
			t.Errorf("extension(%q) = %q, want %q", in, got, want)
		}
	}
}
