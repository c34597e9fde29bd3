package texture

import (
	"context"
	"fmt"
	"image"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
)

// Loader fetches and decodes an image by reference.
type Loader interface {
	Load(ctx context.Context, source string) (*image.NRGBA, error)
}

// SourceLoader resolves http(s) URLs through Client and everything else
// through FS (or the OS filesystem when FS is nil).
type SourceLoader struct {
	FS     fs.FS
	Client *http.Client
}

// NewSourceLoader creates a loader rooted at fsys.
func NewSourceLoader(fsys fs.FS) *SourceLoader {
	return &SourceLoader{FS: fsys, Client: http.DefaultClient}
}

// Load implements Loader. Every failure is returned as *DecodeError.
func (l *SourceLoader) Load(ctx context.Context, source string) (*image.NRGBA, error) {
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}
	defer rc.Close()
	return Decode(rc, source)
}

// Size returns the pixel dimensions of source without decoding it fully.
func (l *SourceLoader) Size(ctx context.Context, source string) (image.Point, error) {
	rc, err := l.open(ctx, source)
	if err != nil {
		return image.Point{}, &DecodeError{Source: source, Err: err}
	}
	defer rc.Close()
	cfg, err := DecodeConfig(rc, source)
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

func (l *SourceLoader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetch(ctx, source)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.FS != nil {
		return l.FS.Open(strings.TrimPrefix(source, "/"))
	}
	return os.Open(source)
}

func (l *SourceLoader) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}
