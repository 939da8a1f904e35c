package scrape

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"fitroom/internal/domain"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// productSelectors target elements whose class or attribute names suggest a
// product photo, in priority order.
var productSelectors = []string{
	"img[class*='product']",
	"img[class*='item']",
	"img[class*='goods']",
	"img[class*='photo']",
	"img[data-src]",
	"img[src*='product']",
	"img[src*='item']",
	".product-image img",
	".item-image img",
	".goods-image img",
	"[class*='product-image'] img",
	"[class*='item-image'] img",
}

// denyKeywords mark URLs that are almost certainly page chrome rather than a
// product photo.
var denyKeywords = []string{"icon", "logo", "avatar", "thumb", "small", "banner", "ad"}

// srcAttributes are checked in order on every matched element; lazy-loading
// markup often keeps the real URL out of src.
var srcAttributes = []string{"src", "data-src", "data-lazy-src"}

// Screenshotter captures a full-page rendering of a URL.
type Screenshotter interface {
	CapturePage(ctx context.Context, pageURL string) ([]byte, error)
}

// Extractor turns a product-page URL into candidate clothing images using a
// three-tier fallback chain: prioritized selectors, a generic image scan,
// and finally a headless-browser screenshot.
type Extractor struct {
	client  *http.Client
	shooter Screenshotter
	logger  zerolog.Logger
}

// NewExtractor builds an Extractor. The HTTP client is shared across the page
// fetch and candidate downloads; the screenshotter backs the last tier.
func NewExtractor(client *http.Client, shooter Screenshotter, logger zerolog.Logger) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Extractor{client: client, shooter: shooter, logger: logger}
}

// Extract runs the fallback chain against pageURL. Fetch and download
// failures in the first two tiers degrade to the next tier; a screenshot
// failure is terminal since no fallback remains after it.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (domain.ExtractionResult, error) {
	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return domain.ExtractionResult{}, domain.Failf(domain.KindValidation, "invalid product url %q", pageURL)
	}

	if doc := e.fetchDocument(ctx, base.String()); doc != nil {
		for _, tier := range []struct {
			name      domain.Tier
			selectors []string
		}{
			{domain.TierSelector, productSelectors},
			{domain.TierGeneric, []string{"img"}},
		} {
			urls := collectImageURLs(doc, base, tier.selectors)
			if len(urls) == 0 {
				continue
			}
			e.logger.Debug().
				Str("url", base.String()).
				Str("tier", string(tier.name)).
				Int("matches", len(urls)).
				Msg("scrape: collected candidate urls")
			candidates := e.download(ctx, urls)
			if len(candidates) > 0 {
				return domain.ExtractionResult{Candidates: candidates, Tier: tier.name}, nil
			}
			// URLs matched but nothing survived download; the generic scan
			// would only re-find the same dead links, so go straight to the
			// screenshot tier.
			break
		}
	}

	return e.screenshotTier(ctx, base.String())
}

func (e *Extractor) screenshotTier(ctx context.Context, pageURL string) (domain.ExtractionResult, error) {
	shot, err := e.shooter.CapturePage(ctx, pageURL)
	if err != nil {
		return domain.ExtractionResult{}, domain.Wrap(domain.KindFetch, "product page could not be captured", err)
	}
	if len(shot) == 0 {
		return domain.ExtractionResult{}, domain.Fail(domain.KindNoImagesFound, "no product images found on the page")
	}
	return domain.ExtractionResult{
		Candidates: []domain.ImageAsset{{Data: shot, MimeType: "image/png"}},
		Tier:       domain.TierScreenshot,
	}, nil
}

// fetchDocument retrieves and parses the page HTML. Any failure is logged
// and swallowed so the chain can fall through to the screenshot tier.
func (e *Extractor) fetchDocument(ctx context.Context, pageURL string) *goquery.Document {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug().Err(err).Str("url", pageURL).Msg("scrape: page fetch failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		e.logger.Debug().Int("status", resp.StatusCode).Str("url", pageURL).Msg("scrape: page fetch rejected")
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		e.logger.Debug().Err(err).Str("url", pageURL).Msg("scrape: html parse failed")
		return nil
	}
	return doc
}

// collectImageURLs scans the document with the given selectors, resolves
// every found URL against the page base, drops deny-listed URLs, and
// deduplicates by exact resolved URL preserving first appearance.
func collectImageURLs(doc *goquery.Document, base *url.URL, selectors []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			resolved, ok := resolveImageURL(base, firstAttr(sel, srcAttributes))
			if !ok || denied(resolved) {
				return
			}
			if _, dup := seen[resolved]; dup {
				return
			}
			seen[resolved] = struct{}{}
			out = append(out, resolved)
		})
	}
	return out
}

func firstAttr(sel *goquery.Selection, names []string) string {
	for _, name := range names {
		if v, ok := sel.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolveImageURL turns protocol-relative, root-relative, and relative URLs
// into absolute ones against the page base. The result is canonical: the host
// is lowercased and the path re-encoded from its decoded form, so
// differently-cased or differently-encoded references to the same resource
// dedupe to one download.
func resolveImageURL(base *url.URL, raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	resolved.Host = strings.ToLower(resolved.Host)
	// Dropping RawPath forces String to escape the decoded Path from scratch,
	// collapsing spellings like %2E back to their literal characters.
	resolved.RawPath = ""
	return resolved.String(), true
}

func denied(imageURL string) bool {
	lower := strings.ToLower(imageURL)
	for _, keyword := range denyKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
