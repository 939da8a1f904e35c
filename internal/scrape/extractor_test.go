package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"fitroom/internal/domain"
)

type fakeShooter struct {
	mu    sync.Mutex
	calls int
	data  []byte
	err   error
}

func (f *fakeShooter) CapturePage(ctx context.Context, pageURL string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.data, f.err
}

func (f *fakeShooter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// pageServer serves an HTML page at / and tracks image downloads per path.
func pageServer(t *testing.T, html string, images map[string][]byte) (*httptest.Server, *sync.Map) {
	t.Helper()
	var hits sync.Map
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, html)
			return
		}
		body, ok := images[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		count, _ := hits.LoadOrStore(r.URL.Path, 0)
		hits.Store(r.URL.Path, count.(int)+1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func bigImage() []byte {
	return make([]byte, 64*1024)
}

func TestExtractSelectorTierWins(t *testing.T) {
	html := `<html><body>
		<img class="product-main" src="/media/first.png">
		<img class="product-main" src="/media/second.png">
		<img src="/media/unrelated.png">
	</body></html>`
	ts, hits := pageServer(t, html, map[string][]byte{
		"/media/first.png":     bigImage(),
		"/media/second.png":    bigImage(),
		"/media/unrelated.png": bigImage(),
	})
	shooter := &fakeShooter{data: []byte("png")}
	e := NewExtractor(ts.Client(), shooter, zerolog.Nop())

	res, err := e.Extract(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if res.Tier != domain.TierSelector {
		t.Fatalf("tier = %q, want %q", res.Tier, domain.TierSelector)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(res.Candidates))
	}
	if shooter.callCount() != 0 {
		t.Fatal("screenshot tier ran despite selector matches")
	}
	if _, ok := hits.Load("/media/unrelated.png"); ok {
		t.Fatal("generic-scan candidate downloaded despite selector matches")
	}
}

func TestExtractGenericScanWhenSelectorsMiss(t *testing.T) {
	html := `<html><body>
		<img src="/pics/garment-one.jpg">
		<img src="/pics/garment-two.jpg">
	</body></html>`
	ts, _ := pageServer(t, html, map[string][]byte{
		"/pics/garment-one.jpg": bigImage(),
		"/pics/garment-two.jpg": bigImage(),
	})
	shooter := &fakeShooter{data: []byte("png")}
	e := NewExtractor(ts.Client(), shooter, zerolog.Nop())

	res, err := e.Extract(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if res.Tier != domain.TierGeneric {
		t.Fatalf("tier = %q, want %q", res.Tier, domain.TierGeneric)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(res.Candidates))
	}
	if shooter.callCount() != 0 {
		t.Fatal("screenshot tier ran despite generic-scan survivors")
	}
}

func TestExtractDenyListFiltersAnyCase(t *testing.T) {
	html := `<html><body>
		<img class="product-main" src="/media/dress.png">
		<img class="product-main" src="/media/site-ICON.png">
		<img class="product-main" src="/media/brand-Logo.png">
	</body></html>`
	ts, hits := pageServer(t, html, map[string][]byte{
		"/media/dress.png":      bigImage(),
		"/media/site-ICON.png":  bigImage(),
		"/media/brand-Logo.png": bigImage(),
	})
	e := NewExtractor(ts.Client(), &fakeShooter{}, zerolog.Nop())

	res, err := e.Extract(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(res.Candidates))
	}
	if _, ok := hits.Load("/media/site-ICON.png"); ok {
		t.Fatal("deny-listed icon URL was downloaded")
	}
	if _, ok := hits.Load("/media/brand-Logo.png"); ok {
		t.Fatal("deny-listed logo URL was downloaded")
	}
}

func TestExtractDeduplicatesResolvedURLs(t *testing.T) {
	// The same resource appears verbatim, via a second selector match,
	// through a dot-segment path, and with a percent-encoded spelling; all
	// four resolve to the same canonical URL.
	html := `<html><body>
		<img class="product-main" src="/media/dress.png">
		<img class="item-view" src="/media/dress.png">
		<img class="product-alt" src="/media/../media/dress.png">
		<img class="product-zoom" src="/media/dress%2Epng">
	</body></html>`
	ts, hits := pageServer(t, html, map[string][]byte{
		"/media/dress.png": bigImage(),
	})
	e := NewExtractor(ts.Client(), &fakeShooter{}, zerolog.Nop())

	res, err := e.Extract(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("candidates = %d, want 1", len(res.Candidates))
	}
	count, _ := hits.Load("/media/dress.png")
	if count.(int) != 1 {
		t.Fatalf("resource downloaded %d times, want 1", count.(int))
	}
}

func TestExtractCapsDownloadsAndFiltersNonImages(t *testing.T) {
	// Seven matches on the page; only the first five URLs may be fetched,
	// and the one answering with an HTML body must not become a candidate.
	html := `<html><body>
		<img class="product-main" src="/media/g1.png">
		<img class="product-main" src="/media/g2.png">
		<img class="product-main" src="/media/g3.png">
		<img class="product-main" src="/media/g4.png">
		<img class="product-main" src="/media/g5.png">
		<img class="product-main" src="/media/g6.png">
		<img class="product-main" src="/media/g7.png">
	</body></html>`
	var hits sync.Map
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, html)
			return
		}
		count, _ := hits.LoadOrStore(r.URL.Path, 0)
		hits.Store(r.URL.Path, count.(int)+1)
		if r.URL.Path == "/media/g3.png" {
			w.Header().Set("Content-Type", "text/html")
			w.Write(bigImage())
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(bigImage())
	}))
	t.Cleanup(ts.Close)
	e := NewExtractor(ts.Client(), &fakeShooter{}, zerolog.Nop())

	res, err := e.Extract(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(res.Candidates) != 4 {
		t.Fatalf("candidates = %d, want 4 (five fetched, one rejected as text/html)", len(res.Candidates))
	}
	total := 0
	hits.Range(func(_, count any) bool {
		total += count.(int)
		return true
	})
	if total != 5 {
		t.Fatalf("image downloads = %d, want exactly 5", total)
	}
	for _, path := range []string{"/media/g6.png", "/media/g7.png"} {
		if _, ok := hits.Load(path); ok {
			t.Fatalf("%s downloaded beyond the cap", path)
		}
	}
}

func TestExtractScreenshotWhenDownloadsFiltered(t *testing.T) {
	// Selector matches exist but the body is icon-sized, so no candidate
	// survives and the screenshot tier must take over.
	html := `<html><body><img class="product-main" src="/media/tiny.png"></body></html>`
	ts, _ := pageServer(t, html, map[string][]byte{
		"/media/tiny.png": make([]byte, 2*1024),
	})
	shooter := &fakeShooter{data: []byte("full page png")}
	e := NewExtractor(ts.Client(), shooter, zerolog.Nop())

	res, err := e.Extract(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if res.Tier != domain.TierScreenshot {
		t.Fatalf("tier = %q, want %q", res.Tier, domain.TierScreenshot)
	}
	if len(res.Candidates) != 1 || string(res.Candidates[0].Data) != "full page png" {
		t.Fatalf("unexpected candidates: %+v", res.Candidates)
	}
	if shooter.callCount() != 1 {
		t.Fatalf("screenshot calls = %d, want 1", shooter.callCount())
	}
}

func TestExtractScreenshotFailureIsTerminal(t *testing.T) {
	html := `<html><body><p>no images here</p></body></html>`
	ts, _ := pageServer(t, html, nil)
	shooter := &fakeShooter{err: errors.New("browser crashed")}
	e := NewExtractor(ts.Client(), shooter, zerolog.Nop())

	_, err := e.Extract(context.Background(), ts.URL+"/")
	if err == nil {
		t.Fatal("expected error when screenshot tier fails")
	}
	if kind := domain.KindOf(err); kind != domain.KindFetch {
		t.Fatalf("kind = %q, want %q", kind, domain.KindFetch)
	}
}

func TestExtractPageFetchFailureFallsThroughToScreenshot(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer ts.Close()
	shooter := &fakeShooter{data: []byte("rendered")}
	e := NewExtractor(ts.Client(), shooter, zerolog.Nop())

	res, err := e.Extract(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if res.Tier != domain.TierScreenshot {
		t.Fatalf("tier = %q, want %q", res.Tier, domain.TierScreenshot)
	}
}

func TestResolveImageURLShapes(t *testing.T) {
	base, _ := url.Parse("https://shop.example/products/dress")
	cases := []struct {
		raw  string
		want string
	}{
		{"//cdn.example/a.png", "https://cdn.example/a.png"},
		{"/media/b.png", "https://shop.example/media/b.png"},
		{"c.png", "https://shop.example/products/c.png"},
		{"https://cdn.example/d.png", "https://cdn.example/d.png"},
		{"/media/e%2Epng", "https://shop.example/media/e.png"},
		{"https://CDN.example/f.png", "https://cdn.example/f.png"},
	}
	for _, tc := range cases {
		got, ok := resolveImageURL(base, tc.raw)
		if !ok {
			t.Fatalf("resolveImageURL(%q) not ok", tc.raw)
		}
		if got != tc.want {
			t.Fatalf("resolveImageURL(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
	if _, ok := resolveImageURL(base, "javascript:void(0)"); ok {
		t.Fatal("non-http scheme should be rejected")
	}
	if _, ok := resolveImageURL(base, ""); ok {
		t.Fatal("empty URL should be rejected")
	}
}
