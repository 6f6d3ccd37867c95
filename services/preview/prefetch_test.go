package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// pngHeader is enough of a PNG for content sniffing to call it an image.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestPrefetcherFetchPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.png", "/b.png":
			w.Write(pngHeader)
		case "/missing.png":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Write([]byte("<html>not an image</html>"))
		}
	}))
	defer server.Close()

	urls := []string{
		server.URL + "/a.png",
		server.URL + "/missing.png",
		server.URL + "/page.html",
		server.URL + "/b.png",
	}

	p := NewPrefetcher(nil, 2)
	images := p.Fetch(context.Background(), urls)
	if len(images) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(images))
	}

	for i, img := range images {
		if img.URL != urls[i] {
			t.Errorf("entry %d out of order: %q", i, img.URL)
		}
	}

	if len(images[0].Data) == 0 || images[0].MimeType != "image/png" {
		t.Errorf("expected first entry inlined as png, got %+v", images[0].MimeType)
	}
	if len(images[1].Data) != 0 {
		t.Error("404 download must fall back to URL-only")
	}
	if len(images[2].Data) != 0 {
		t.Error("non-image content must fall back to URL-only")
	}
	if len(images[3].Data) == 0 {
		t.Error("expected last entry inlined")
	}
}

func TestPrefetcherEmptyInput(t *testing.T) {
	p := NewPrefetcher(nil, 2)
	if images := p.Fetch(context.Background(), nil); len(images) != 0 {
		t.Errorf("expected no images, got %d", len(images))
	}
}
