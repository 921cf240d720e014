// Package filex holds small filesystem helpers for the CLI.
package filex

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned by ReadImage when the file exceeds the limit.
var ErrTooLarge = errors.New("file too large")

// ErrNotImage is returned by ReadImage for files that are not images.
var ErrNotImage = errors.New("not an image")

// EnsureDir creates dir (relative paths resolve against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// Image is a file read from disk for upload.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size is the length of the payload in bytes.
func (i *Image) Size() int64 { return int64(len(i.Data)) }

// ReadImage loads the file at path, refusing anything larger than limit
// bytes or whose content is not an image. The size is checked from the file
// metadata before the content is read.
func ReadImage(path string, limit int64) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, filepath.Base(path), fi.Size(), limit)
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, filepath.Base(path), limit)
	}

	ct := contentType(path, data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotImage, filepath.Base(path), ct)
	}

	return &Image{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}

// contentType sniffs data and falls back to the file extension.
func contentType(path string, data []byte) string {
	ct := http.DetectContentType(data)
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); strings.HasPrefix(byExt, "image/") {
		mt, _, err := mime.ParseMediaType(byExt)
		if err == nil {
			return mt
		}
	}
	return ct
}
