package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

var ErrEmptyImage = errors.New("ocr: empty image")

// Tesseract shells out to the tesseract CLI. The image is spooled to a temp
// file because tesseract reads its input by path.
type Tesseract struct {
	Binary  string
	Timeout time.Duration
	TempDir string
}

func NewTesseract(binary string, timeout time.Duration) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	return &Tesseract{Binary: binary, Timeout: timeout}
}

func (t *Tesseract) Extract(ctx context.Context, image io.Reader) (string, error) {
	f, err := os.CreateTemp(t.TempDir, "prescription-*.img")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(f.Name())

	n, err := io.Copy(f, image)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if n == 0 {
		return "", ErrEmptyImage
	}

	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Binary, f.Name(), "stdout")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("run %s: %w: %s", t.Binary, err, msg)
		}
		return "", fmt.Errorf("run %s: %w", t.Binary, err)
	}

	return stdout.String(), nil
}
