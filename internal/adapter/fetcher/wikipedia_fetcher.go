package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"wikiquiz/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	fetchTimeout = 15 * time.Second

	// fallbackTitle is used when the page has no firstHeading element.
	fallbackTitle = "Unknown Title"
)

// excludedSections are boilerplate headings that carry no article content.
var excludedSections = map[string]struct{}{
	"references":     {},
	"external links": {},
	"see also":       {},
}

// WikipediaFetcher implements domain.ContentFetcher by scraping the
// rendered article HTML.
type WikipediaFetcher struct {
	client *http.Client
}

func NewWikipediaFetcher() *WikipediaFetcher {
	return &WikipediaFetcher{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch implements domain.ContentFetcher. Extraction mirrors the page
// structure: title from the first heading, summary from the first
// non-empty paragraph of the content container, sections from the h2
// headline spans, raw text from every non-empty paragraph in order.
func (f *WikipediaFetcher) Fetch(ctx context.Context, url string) (*domain.PageContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewFetchError(err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.NewFetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewFetchError(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, domain.NewFetchError(err)
	}

	title := strings.TrimSpace(doc.Find("h1#firstHeading").First().Text())
	if title == "" {
		title = fallbackTitle
	}

	contentRoot := doc.Find("div#mw-content-text")
	if contentRoot.Length() == 0 {
		return nil, domain.NewParseError("Wikipedia content root not found")
	}

	var summary string
	var paragraphs []string
	contentRoot.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			return
		}
		if summary == "" {
			summary = text
		}
		paragraphs = append(paragraphs, text)
	})

	var sections []string
	contentRoot.Find("h2 span.mw-headline").Each(func(_ int, span *goquery.Selection) {
		section := strings.TrimSpace(span.Text())
		if section == "" {
			return
		}
		if _, excluded := excludedSections[strings.ToLower(section)]; !excluded {
			sections = append(sections, section)
		}
	})

	return &domain.PageContent{
		URL:      url,
		Title:    title,
		Summary:  summary,
		Sections: sections,
		RawText:  strings.Join(paragraphs, "\n"),
	}, nil
}

var _ domain.ContentFetcher = (*WikipediaFetcher)(nil)
