package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"magnetview/internal/cache"
	"magnetview/messaging"
	"magnetview/services/preview"
	"magnetview/services/resolve"
	"magnetview/utils"
)

const testMagnet = "magnet:?xt=urn:btih:AAAABBBBCCCCDDDDEEEEFFFF0000111122223333"

func newTestRouter(t *testing.T, upstream http.HandlerFunc) http.Handler {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	policy := resolve.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	resolver := resolve.NewService(resolve.NewClient(nil, policy), cache.NewMemoryStore(), []string{server.URL}, time.Hour)
	svc := preview.NewService(resolver, nil, preview.Options{
		MaxScreenshots:   5,
		ImageBaseRewrite: "https://mirror.example",
		BotName:          "Preview Bot",
		GroupedPlatforms: []string{"aiocqhttp"},
	})

	router := utils.NewRouter()
	NewPreviewHandler(svc).Register(router)
	return router
}

func postPreview(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/preview", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPreviewEndpoint(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type":"video","file_type":"video","name":"Sample","size":1073741824,"count":3,"screenshots":[{"screenshot":"https://whatslink.info/x.jpg"}]}`))
	})

	body, _ := json.Marshal(messaging.Event{
		Platform: "aiocqhttp",
		SelfID:   "10001",
		Message:  "please " + testMagnet,
	})
	rec := postPreview(t, router, string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Messages []messaging.Outbound `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Messages) != 1 || len(resp.Messages[0].Nodes) != 2 {
		t.Fatalf("expected grouped envelope, got %+v", resp.Messages)
	}
	if got := resp.Messages[0].Nodes[1].Image.URL; got != "https://mirror.example/x.jpg" {
		t.Errorf("expected rewritten screenshot URL, got %q", got)
	}
}

func TestPreviewEndpointNoMagnet(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})

	rec := postPreview(t, router, `{"platform":"telegram","message":"hello"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPreviewEndpointBadBody(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	if rec := postPreview(t, router, "{not json"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
	if rec := postPreview(t, router, `{"platform":"telegram"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing message, got %d", rec.Code)
	}
}

func TestPreviewEndpointResolutionFailure(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	body, _ := json.Marshal(messaging.Event{Platform: "telegram", Message: testMagnet})
	rec := postPreview(t, router, string(body))
	// Resolution failures still answer 200 with a user-facing message.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "解析失败") {
		t.Errorf("expected failure reply in body: %s", rec.Body.String())
	}
}

func TestHealthRoute(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from /health, got %d", rec.Code)
	}
}
