// Package blobstore is the upload collaborator. The content store only ever
// sees the returned URL; a blob that outlives a failed persist is accepted
// as orphaned and is not rolled back.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Kind selects the media class of an upload.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// MaxUploadSize limits a single upload to 50MB.
const MaxUploadSize = 50 * 1024 * 1024

// Store accepts binary content and returns a durable URL for it.
type Store interface {
	Save(ctx context.Context, kind Kind, filename string, r io.Reader) (string, error)
}

// Local writes uploads under a base directory served as /static/uploads.
type Local struct {
	baseDir string
}

// NewLocal creates a Local blob store rooted at baseDir.
func NewLocal(baseDir string) *Local {
	return &Local{baseDir: baseDir}
}

// Save stores the content and returns its public URL. Filenames are
// prefixed with a nanosecond timestamp to avoid collisions.
func (l *Local) Save(ctx context.Context, kind Kind, filename string, r io.Reader) (string, error) {
	sub := "images"
	if kind == KindAudio {
		sub = "music"
	}

	now := time.Now()
	dir := filepath.Join(l.baseDir, sub, now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := filepath.Base(filename)
	if name == "." || name == "" {
		name = fmt.Sprintf("file_%d", now.UnixNano())
	}
	safeName := fmt.Sprintf("%d_%s", now.UnixNano(), name)
	dstPath := filepath.Join(dir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	lr := &io.LimitedReader{R: r, N: MaxUploadSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > MaxUploadSize {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("upload exceeds %d bytes", int64(MaxUploadSize))
	}

	return fmt.Sprintf("/static/uploads/%s/%s/%s/%s", sub, now.Format("2006"), now.Format("01"), safeName), nil
}
