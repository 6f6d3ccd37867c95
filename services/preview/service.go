package preview

import (
	"context"
	"errors"
	"log"

	"magnetview/messaging"
	"magnetview/services/resolve"
)

// MaxScreenshotCeiling is the hard upper bound on delivered screenshots.
const MaxScreenshotCeiling = 9

// Options carries the read-only presentation configuration.
type Options struct {
	// MaxScreenshots is clamped to 1..MaxScreenshotCeiling; out-of-range
	// or absent values fall back to 1.
	MaxScreenshots int
	// ImageBaseRewrite, when set, replaces the origin of screenshot URLs.
	ImageBaseRewrite string
	// BotName is the identity header on grouped delivery nodes.
	BotName string
	// GroupedPlatforms lists platforms capable of forwarded node groups.
	GroupedPlatforms []string
	// PrefetchImages inlines screenshot bytes on grouped platforms.
	PrefetchImages bool
}

// Service is the per-request orchestrator: it takes an inbound event,
// runs the lookup pipeline, formats the result, and shapes the reply
// through the platform's delivery capability. Every failure past input
// validation comes back as a user-facing plain-text message, so no
// request goes unanswered.
type Service struct {
	resolver   *resolve.Service
	prefetcher *Prefetcher

	grouped    messaging.Deliverer
	sequential messaging.Deliverer
	groupedOn  map[string]bool

	maxScreenshots int
	imageBase      string
	prefetchOn     bool
}

func NewService(resolver *resolve.Service, prefetcher *Prefetcher, opts Options) *Service {
	maxScreenshots := opts.MaxScreenshots
	if maxScreenshots < 1 {
		maxScreenshots = 1
	}
	if maxScreenshots > MaxScreenshotCeiling {
		maxScreenshots = MaxScreenshotCeiling
	}

	groupedOn := make(map[string]bool, len(opts.GroupedPlatforms))
	for _, platform := range opts.GroupedPlatforms {
		groupedOn[platform] = true
	}

	return &Service{
		resolver:       resolver,
		prefetcher:     prefetcher,
		grouped:        &messaging.GroupedDeliverer{BotName: opts.BotName},
		sequential:     &messaging.SequentialDeliverer{},
		groupedOn:      groupedOn,
		maxScreenshots: maxScreenshots,
		imageBase:      opts.ImageBaseRewrite,
		prefetchOn:     opts.PrefetchImages,
	}
}

// Handle runs the full pipeline for one inbound event. ErrNoMagnet is
// returned as-is (the event carried nothing resolvable); every other
// failure is converted into reply messages.
func (s *Service) Handle(ctx context.Context, event messaging.Event) ([]messaging.Outbound, error) {
	deliverer := s.delivererFor(event.Platform)

	result, err := s.resolver.LookupText(ctx, event.Message)
	if err != nil {
		if errors.Is(err, resolve.ErrNoMagnet) {
			return nil, err
		}
		log.Printf("[preview] lookup failed for event %s: %v", event.MessageID, err)
		return deliverer.Deliver(ctx, event, []string{failureMessage(err)}, nil)
	}

	text := FormatResult(result)
	urls := ScreenshotURLs(result, s.maxScreenshots, s.imageBase)
	images := s.images(ctx, event.Platform, urls)

	return deliverer.Deliver(ctx, event, []string{text}, images)
}

func (s *Service) delivererFor(platform string) messaging.Deliverer {
	if s.groupedOn[platform] {
		return s.grouped
	}
	return s.sequential
}

func (s *Service) images(ctx context.Context, platform string, urls []string) []messaging.Image {
	if len(urls) == 0 {
		return nil
	}
	if s.prefetchOn && s.groupedOn[platform] && s.prefetcher != nil {
		return s.prefetcher.Fetch(ctx, urls)
	}
	images := make([]messaging.Image, 0, len(urls))
	for _, u := range urls {
		images = append(images, messaging.Image{URL: u})
	}
	return images
}

// failureMessage maps pipeline errors to the short user-facing replies.
func failureMessage(err error) string {
	var upstreamErr *resolve.UpstreamError
	switch {
	case errors.Is(err, resolve.ErrInvalidMagnet):
		return "❌ 磁力链接格式无效"
	case errors.As(err, &upstreamErr):
		return "❌ 解析失败：" + truncateMessage(upstreamErr.Message, 120)
	default:
		return "❌ 解析失败，请稍后重试"
	}
}

func truncateMessage(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
