package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps files in a directory, named by content hash.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("filestore directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create filestore directory: %w", err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Store(ctx context.Context, data []byte) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	hash := ContentHash(data)
	target := filepath.Join(l.dir, hash)

	if _, err := os.Stat(target); err == nil {
		return hash, hash, nil
	}

	tmp, err := os.CreateTemp(l.dir, hash+".*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", "", fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", "", fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", "", fmt.Errorf("rename file: %w", err)
	}
	return hash, hash, nil
}

func (l *Local) Delete(ctx context.Context, reference string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if reference == "" || reference != filepath.Base(reference) {
		return fmt.Errorf("invalid reference %q", reference)
	}
	err := os.Remove(filepath.Join(l.dir, reference))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
