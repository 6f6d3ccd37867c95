package preview

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sourcegraph/conc/pool"

	"magnetview/messaging"
)

// Prefetcher downloads screenshot bytes ahead of delivery so grouped
// messages can inline images instead of pointing the platform at the
// upstream host.
type Prefetcher struct {
	httpClient *http.Client
	maxWorkers int
	maxBytes   int64
	log        *slog.Logger
}

func NewPrefetcher(client *http.Client, maxWorkers int) *Prefetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if maxWorkers <= 0 {
		maxWorkers = 3
	}
	return &Prefetcher{
		httpClient: client,
		maxWorkers: maxWorkers,
		maxBytes:   8 << 20,
		log:        slog.Default().With("component", "screenshot-prefetch"),
	}
}

// Fetch downloads the given URLs with bounded concurrency, preserving
// order. Entries that fail to download, or turn out not to be images,
// fall back to URL-only delivery.
func (p *Prefetcher) Fetch(ctx context.Context, urls []string) []messaging.Image {
	images := make([]messaging.Image, len(urls))

	workers := pool.New().WithMaxGoroutines(p.maxWorkers)
	for i, u := range urls {
		workers.Go(func() {
			images[i] = p.fetchOne(ctx, u)
		})
	}
	workers.Wait()

	return images
}

func (p *Prefetcher) fetchOne(ctx context.Context, url string) messaging.Image {
	fallback := messaging.Image{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		p.log.Warn("bad screenshot URL", "url", url, "error", err)
		return fallback
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Warn("screenshot download failed", "url", url, "error", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.log.Warn("screenshot download rejected", "url", url, "status", resp.StatusCode)
		return fallback
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes))
	if err != nil {
		p.log.Warn("screenshot read failed", "url", url, "error", err)
		return fallback
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		p.log.Warn("screenshot is not an image", "url", url, "detected", detected.String())
		return fallback
	}

	return messaging.Image{URL: url, Data: data, MimeType: detected.String()}
}
