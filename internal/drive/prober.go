package drive

import (
	"context"
	"net/http"

	"github.com/pavelc4/lukey-bot/internal/media"
	pkghttp "github.com/pavelc4/lukey-bot/pkg/http"
	"github.com/pavelc4/lukey-bot/pkg/logger"
)

// Prober estimates a file size without downloading it.
type Prober struct {
	client *http.Client
	urls   URLs
}

func NewProber(client *http.Client, urls URLs) *Prober {
	return &Prober{client: client, urls: urls}
}

// Probe prefers the size from the listing and falls back to a HEAD request.
// Any failure yields an unknown estimate.
func (p *Prober) Probe(ctx context.Context, e media.Entry) media.SizeEstimate {
	if e.Size >= 0 {
		return media.ProbedSize(e.Size)
	}

	n, err := pkghttp.HeadRequest(ctx, p.client, p.urls.Download(e.ID), nil)
	if err != nil {
		logger.FromContext(ctx).Debug("Size probe failed", "file_id", e.ID, "error", err)
		return media.UnknownSize()
	}
	if n < 0 {
		return media.UnknownSize()
	}
	return media.ProbedSize(n)
}
