// Package linkpreview fetches Open Graph metadata for a URL, used to show
// what a shared link will look like before scheduling it.
package linkpreview

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	domainPost "github.com/fbautopost/backend/domains/post"
)

const (
	fetchTimeout = 10 * time.Second
	userAgent    = "facebookexternalhit/1.1"
)

type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{httpClient: &http.Client{Timeout: fetchTimeout}}
}

// Fetch downloads the page and extracts og: tags, falling back to the
// document title and meta description.
func (f *Fetcher) Fetch(ctx context.Context, url string) (domainPost.LinkPreview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domainPost.LinkPreview{}, fmt.Errorf("invalid preview url: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return domainPost.LinkPreview{}, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return domainPost.LinkPreview{}, fmt.Errorf("preview target returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domainPost.LinkPreview{}, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	preview := domainPost.LinkPreview{
		URL:         url,
		Title:       metaProperty(doc, "og:title"),
		Description: metaProperty(doc, "og:description"),
		ImageURL:    metaProperty(doc, "og:image"),
	}
	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if preview.Description == "" {
		preview.Description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	}
	return preview, nil
}

func metaProperty(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(content)
}
