// Package storage keeps uploaded product images.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strconv"
	"time"

	"product-catalog/pkg/utils"
)

// Store saves and deletes files addressed by slash-separated keys.
type Store interface {
	// Save writes file under key and returns the path to persist on the product.
	Save(ctx context.Context, key string, file *File) (string, error)
	// Delete removes a path previously returned by Save.
	Delete(ctx context.Context, path string) error
}

// File is an upload waiting to be stored.
type File struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

func NewFile(name string, size int64, open func() (io.ReadCloser, error)) *File {
	return &File{Name: name, Size: size, open: open}
}

// FromMultipart wraps a form file.
func FromMultipart(fh *multipart.FileHeader) *File {
	return NewFile(fh.Filename, fh.Size, func() (io.ReadCloser, error) {
		return fh.Open()
	})
}

func (f *File) Open() (io.ReadCloser, error) {
	if f == nil || f.open == nil {
		return nil, fmt.Errorf("no file content")
	}
	return f.open()
}

// UploadSize is zero for a nil file.
func (f *File) UploadSize() int64 {
	if f == nil {
		return 0
	}
	return f.Size
}

// ImageKey names a new image of the user: <userID>/<unix>_<10 random chars>.png
func ImageKey(userID int64, now time.Time) (string, error) {
	suffix, err := utils.RandomString(10)
	if err != nil {
		return "", fmt.Errorf("failed to generate image name: %w", err)
	}
	name := fmt.Sprintf("%d_%s.png", now.Unix(), suffix)
	return path.Join(strconv.FormatInt(userID, 10), name), nil
}
