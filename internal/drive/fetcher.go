package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"

	"github.com/pavelc4/lukey-bot/internal/media"
	"github.com/pavelc4/lukey-bot/pkg/buffer"
	pkghttp "github.com/pavelc4/lukey-bot/pkg/http"
)

var (
	// ErrDownload marks every failure to obtain the media bytes.
	ErrDownload = errors.New("download failed")
	// ErrTooLarge means the body ran past the limit given to Fetch. The
	// bytes written up to that point stay in dst.
	ErrTooLarge = errors.New("file exceeds download limit")
)

const sniffLen = 3072

// Fetcher downloads a file in full.
type Fetcher struct {
	client *http.Client
	urls   URLs
}

func NewFetcher(client *http.Client, urls URLs) *Fetcher {
	return &Fetcher{client: client, urls: urls}
}

// Fetch streams the file body into dst and returns the number of bytes
// written, which is the authoritative size. With limit > 0 it stops after
// limit+1 bytes and returns ErrTooLarge.
func (f *Fetcher) Fetch(ctx context.Context, e media.Entry, dst io.Writer, limit int64) (int64, error) {
	body, _, _, err := pkghttp.StreamRequest(ctx, f.client, f.urls.Download(e.ID), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrDownload, e.ID, err)
	}
	defer body.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w: %s: %v", ErrDownload, e.ID, err)
	}
	head = head[:n]
	if n == 0 {
		return 0, fmt.Errorf("%w: %s: empty body", ErrDownload, e.ID)
	}

	// Drive answers large or restricted files with an HTML interstitial.
	if detected := mimetype.Detect(head); detected.Is("text/html") {
		return 0, fmt.Errorf("%w: %s: got html page instead of media", ErrDownload, e.ID)
	}

	buf := buffer.Get()
	defer buffer.Put(buf)

	var src io.Reader = io.MultiReader(bytes.NewReader(head), body)
	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}

	written, err := io.CopyBuffer(dst, src, buf)
	if err != nil {
		return written, fmt.Errorf("%w: %s: %v", ErrDownload, e.ID, err)
	}
	if limit > 0 && written > limit {
		return written, fmt.Errorf("%w: %s: more than %d bytes", ErrTooLarge, e.ID, limit)
	}
	return written, nil
}
