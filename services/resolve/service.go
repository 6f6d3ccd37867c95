package resolve

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"magnetview/internal/cache"
	"magnetview/models"
)

var (
	// ErrNoMagnet means the inbound text carried nothing resolvable.
	ErrNoMagnet = errors.New("no magnet link in message")
	// ErrResolutionFailed means every configured endpoint was exhausted.
	ErrResolutionFailed = errors.New("resolution failed")
)

// UpstreamError carries an explicit error payload reported by the lookup
// API. It is user-visible and never cached.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return "upstream error: " + e.Message
}

// inflightLookup lets concurrent misses for the same key share one
// upstream call instead of each going to the network.
type inflightLookup struct {
	wg     sync.WaitGroup
	result *models.ResolutionResult
	err    error
}

// Service runs the lookup pipeline for one magnet link: canonicalize,
// consult the cache, resolve across the endpoint chain on a miss, store
// the validated result. Cache trouble never fails a request; it only
// degrades to always-resolve.
type Service struct {
	client    *Client
	store     cache.Store
	endpoints []string
	ttl       time.Duration

	inflightMu sync.Mutex
	inflight   map[string]*inflightLookup
}

func NewService(client *Client, store cache.Store, endpoints []string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Service{
		client:    client,
		store:     store,
		endpoints: endpoints,
		ttl:       ttl,
		inflight:  make(map[string]*inflightLookup),
	}
}

// LookupText extracts a magnet link from free-form message text and
// resolves it.
func (s *Service) LookupText(ctx context.Context, text string) (*models.ResolutionResult, error) {
	link, ok := ExtractMagnet(text)
	if !ok {
		return nil, ErrNoMagnet
	}
	return s.Lookup(ctx, link)
}

// Lookup resolves one magnet link through cache and upstream.
func (s *Service) Lookup(ctx context.Context, link string) (*models.ResolutionResult, error) {
	canonical, ok := CanonicalMagnet(link)
	if !ok {
		return nil, ErrInvalidMagnet
	}

	cached, err := s.store.Get(ctx, canonical)
	if err != nil {
		log.Printf("[resolve] cache lookup failed, treating as miss: %v", err)
	}
	if cached != nil {
		if err := s.store.Refresh(ctx, canonical, s.ttl); err != nil {
			log.Printf("[resolve] cache refresh failed: %v", err)
		}
		return cached, nil
	}

	return s.resolveShared(ctx, canonical)
}

// resolveShared collapses concurrent misses for the same canonical link
// into a single upstream call and fans the result out to all waiters.
func (s *Service) resolveShared(ctx context.Context, canonical string) (*models.ResolutionResult, error) {
	key := cache.Key(canonical)

	s.inflightMu.Lock()
	if pending, ok := s.inflight[key]; ok {
		s.inflightMu.Unlock()
		pending.wg.Wait()
		return pending.result, pending.err
	}
	pending := &inflightLookup{}
	pending.wg.Add(1)
	s.inflight[key] = pending
	s.inflightMu.Unlock()

	pending.result, pending.err = s.resolveAndStore(ctx, canonical)

	s.inflightMu.Lock()
	delete(s.inflight, key)
	s.inflightMu.Unlock()
	pending.wg.Done()

	return pending.result, pending.err
}

func (s *Service) resolveAndStore(ctx context.Context, canonical string) (*models.ResolutionResult, error) {
	result, err := s.client.ResolveWithFallback(ctx, canonical, s.endpoints)
	if err != nil {
		return nil, ErrResolutionFailed
	}

	if result.IsUpstreamError() {
		// Reported by the API, not a structural defect. Surfaced, not cached.
		return nil, &UpstreamError{Message: result.Error}
	}

	if err := s.store.Set(ctx, canonical, result, s.ttl); err != nil {
		log.Printf("[resolve] cache store failed, continuing uncached: %v", err)
	}
	return result, nil
}
