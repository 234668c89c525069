package enrich

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// minParagraphLen filters out nav fragments and cookie banners
const minParagraphLen = 80

// Extractor fetches a company website and pulls out a short business
// description to backfill companies whose description is empty.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
}

// NewExtractor creates a description extractor
func NewExtractor(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "Mozilla/5.0 (compatible; comps-api/1.0)",
	}
}

// FetchDescription downloads the page at url and extracts a description.
// Preference order: meta description, og:description, first substantial
// paragraph. Returns an error when nothing usable is found.
func (e *Extractor) FetchDescription(ctx context.Context, url string) (string, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	description := ExtractDescription(doc)
	if description == "" {
		return "", fmt.Errorf("no description found at %s", url)
	}
	return description, nil
}

// ExtractDescription pulls a description from a parsed document
func ExtractDescription(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			return trimmed
		}
	}

	if content, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			return trimmed
		}
	}

	var paragraph string
	doc.Find("main p, article p, body p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if len(text) >= minParagraphLen {
			paragraph = text
			return false
		}
		return true
	})
	return paragraph
}
