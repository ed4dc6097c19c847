package transcode

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    int
		wantErr bool
	}{
		{
			name: "typical",
			output: "Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'a.mp4':\n" +
				"  Duration: 00:01:05.43, start: 0.000000, bitrate: 1205 kb/s\n",
			want: 65,
		},
		{name: "hours", output: "  Duration: 02:00:00.99, start: 0", want: 7200},
		{name: "fraction truncated", output: "Duration: 00:00:09.99,", want: 9},
		{name: "not available", output: "Duration: N/A, start: 0", wantErr: true},
		{name: "missing", output: "Invalid data found when processing input", wantErr: true},
		{name: "empty", output: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDuration(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatOffset(t *testing.T) {
	if got := formatOffset(5 * time.Second); got != "00:00:05" {
		t.Errorf("formatOffset(5s) = %q", got)
	}
	if got := formatOffset(3725 * time.Second); got != "01:02:05" {
		t.Errorf("formatOffset(3725s) = %q", got)
	}
	if got := formatOffset(-time.Second); got != "00:00:00" {
		t.Errorf("formatOffset(-1s) = %q", got)
	}
}

func TestMissingTool(t *testing.T) {
	f := NewFFmpeg("vidhub-no-such-ffmpeg-binary", time.Second)
	dir := t.TempDir()

	if _, err := f.Duration(context.Background(), filepath.Join(dir, "a.mp4")); !errors.Is(err, ErrToolUnavailable) {
		t.Errorf("Duration err = %v, want ErrToolUnavailable", err)
	}
	err := f.ExtractFrame(context.Background(), filepath.Join(dir, "a.mp4"), filepath.Join(dir, "a.jpg"), 5*time.Second)
	if !errors.Is(err, ErrToolUnavailable) {
		t.Errorf("ExtractFrame err = %v, want ErrToolUnavailable", err)
	}
}
