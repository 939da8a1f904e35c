package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"fitroom/internal/domain"
)

const (
	// Only the first maxDownloads URLs are fetched; product pages front-load
	// their gallery so later matches are rarely better.
	maxDownloads = 5

	// Bodies at or below this size are icon/placeholder noise.
	minCandidateBytes = 10 * 1024
)

// download fetches up to maxDownloads candidate URLs with bounded
// concurrency. Individual failures are logged and skipped; they never cancel
// sibling downloads. Survivors keep the order of their URLs.
func (e *Extractor) download(ctx context.Context, urls []string) []domain.ImageAsset {
	if len(urls) > maxDownloads {
		urls = urls[:maxDownloads]
	}

	results := make([]domain.ImageAsset, len(urls))
	var g errgroup.Group
	g.SetLimit(maxDownloads)
	for i, candidateURL := range urls {
		g.Go(func() error {
			asset, err := e.fetchImage(ctx, candidateURL)
			if err != nil {
				e.logger.Debug().Err(err).Str("url", candidateURL).Msg("scrape: candidate skipped")
				return nil
			}
			results[i] = asset
			return nil
		})
	}
	_ = g.Wait()

	var survivors []domain.ImageAsset
	for _, asset := range results {
		if !asset.IsZero() {
			survivors = append(survivors, asset)
		}
	}
	return survivors
}

func (e *Extractor) fetchImage(ctx context.Context, imageURL string) (domain.ImageAsset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return domain.ImageAsset{}, fmt.Errorf("download status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return domain.ImageAsset{}, fmt.Errorf("not an image: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("read body: %w", err)
	}
	if len(data) <= minCandidateBytes {
		return domain.ImageAsset{}, fmt.Errorf("too small (%d bytes), likely an icon", len(data))
	}

	return domain.ImageAsset{Data: data, MimeType: contentType}, nil
}
