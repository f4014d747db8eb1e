package form

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// MaxImageBytes caps a single image file.
const MaxImageBytes = 10 << 20

const maxConcurrentReads = 4

// ErrNotImage is returned for files whose content is not an image.
var ErrNotImage = errors.New("file is not an image")

// Opener opens a named image file.
type Opener func(name string) (io.ReadCloser, error)

// OpenFile opens files from the local filesystem.
func OpenFile(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// EncodeImages reads every named file concurrently and returns the base64
// contents in the order of names. If any read fails, nothing is returned.
func EncodeImages(ctx context.Context, open Opener, names []string) ([]string, error) {
	if open == nil {
		open = OpenFile
	}
	out := make([]string, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			enc, err := encodeFile(open, name)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(name), err)
			}
			out[i] = enc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeFile(open Opener, name string) (string, error) {
	f, err := open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("larger than %d bytes", MaxImageBytes)
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", ErrNotImage
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// StripDataURL returns the base64 payload of a data URL, or s unchanged.
func StripDataURL(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}
