package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

var (
	// ErrToolUnavailable ffmpeg 不在 PATH 中
	ErrToolUnavailable = errors.New("ffmpeg is not available")
	// ErrNoDuration 输出中没有可解析的时长
	ErrNoDuration = errors.New("duration not found in ffmpeg output")
)

// FFmpeg 通过外部 ffmpeg 进程探测时长、截取画面
type FFmpeg struct {
	bin     string
	timeout time.Duration
}

// NewFFmpeg 创建 FFmpeg 探测器，timeout 为单次调用上限
func NewFFmpeg(bin string, timeout time.Duration) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin, timeout: timeout}
}

func (f *FFmpeg) lookup() (string, error) {
	path, err := exec.LookPath(f.bin)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}
	return path, nil
}

func (f *FFmpeg) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

// Duration 读取视频时长（秒，向下取整）
// ffmpeg -i 在没有输出文件时以非零状态退出，这里只看 stderr
func (f *FFmpeg) Duration(ctx context.Context, videoPath string) (int, error) {
	bin, err := f.lookup()
	if err != nil {
		return 0, err
	}

	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-i", videoPath, "-hide_banner")
	cmd.Stderr = &stderr
	_ = cmd.Run()

	if ctx.Err() != nil {
		return 0, fmt.Errorf("ffmpeg probe: %w", ctx.Err())
	}

	return parseDuration(stderr.String())
}

// ExtractFrame 截取 offset 处的一帧写入 outPath
func (f *FFmpeg) ExtractFrame(ctx context.Context, videoPath, outPath string, offset time.Duration) error {
	bin, err := f.lookup()
	if err != nil {
		return err
	}

	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	args := []string{
		"-i", videoPath,
		"-ss", formatOffset(offset),
		"-frames:v", "1",
		"-y",
		outPath,
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract frame failed: %w\noutput: %s", err, truncate(output, 512))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("ffmpeg produced no frame: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced an empty frame")
	}

	logger.Debug("FFmpeg frame extracted", zap.String("src", videoPath), zap.String("dst", outPath))
	return nil
}

// parseDuration 解析 "Duration: HH:MM:SS.xx," 行
func parseDuration(output string) (int, error) {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, "Duration: ")
		if idx < 0 {
			continue
		}
		value := line[idx+len("Duration: "):]
		if comma := strings.IndexByte(value, ','); comma >= 0 {
			value = value[:comma]
		}
		parts := strings.Split(strings.TrimSpace(value), ":")
		if len(parts) != 3 {
			return 0, fmt.Errorf("%w: %q", ErrNoDuration, value)
		}
		h, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNoDuration, value)
		}
		m, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNoDuration, value)
		}
		s, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNoDuration, value)
		}
		total := int(h)*3600 + int(m)*60 + int(s)
		if total < 0 {
			return 0, fmt.Errorf("%w: negative %q", ErrNoDuration, value)
		}
		return total, nil
	}
	return 0, ErrNoDuration
}

func formatOffset(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
