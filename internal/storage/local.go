package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore keeps files on disk below Root.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: path.Clean(filepath.ToSlash(root))}
}

func (s *LocalStore) Save(ctx context.Context, key string, file *File) (string, error) {
	target, err := s.resolve(path.Join(s.Root, key))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, readerWithContext(ctx, src)); err != nil {
		dst.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return path.Join(s.Root, key), nil
}

func (s *LocalStore) Delete(_ context.Context, p string) error {
	target, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("failed to delete %s: %w", p, err)
	}
	return nil
}

// resolve maps a stored path to the filesystem, refusing anything outside Root.
func (s *LocalStore) resolve(p string) (string, error) {
	clean := path.Clean(filepath.ToSlash(p))
	if clean != s.Root && !strings.HasPrefix(clean, s.Root+"/") {
		return "", fmt.Errorf("path %q is outside %q", p, s.Root)
	}
	if clean == s.Root {
		return "", fmt.Errorf("path %q names the storage root", p)
	}
	return filepath.FromSlash(clean), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
