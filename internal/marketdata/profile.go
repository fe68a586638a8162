package marketdata

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mwhitfield/alphascore/pkg/httputil"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

// ProfileScraper pulls company name, sector and industry off the
// profile page. The quote API does not expose classification, so this
// is scraped HTML with all the fragility that implies; callers treat
// every failure as non-fatal.
type ProfileScraper struct {
	client  *httputil.Client
	baseURL string
	logger  *logger.Logger
}

// NewProfileScraper creates a scraper rooted at baseURL.
func NewProfileScraper(client *httputil.Client, baseURL string, log *logger.Logger) *ProfileScraper {
	return &ProfileScraper{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log,
	}
}

// Scrape fetches and parses the profile page for symbol.
func (s *ProfileScraper) Scrape(ctx context.Context, symbol string) (*Profile, error) {
	pageURL := fmt.Sprintf("%s/quote/%s/profile", s.baseURL, url.PathEscape(symbol))

	resp, err := s.client.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("profile %s: status %d", symbol, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", symbol, err)
	}

	profile := parseProfile(doc, symbol)

	s.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"sector": profile.Sector,
	}).Debug("Scraped profile")

	return profile, nil
}

// parseProfile walks label nodes instead of relying on page classes,
// which churn with every redesign. A label is any dt/span/strong whose
// text starts with Sector or Industry; the value is its next sibling.
func parseProfile(doc *goquery.Document, symbol string) *Profile {
	profile := &Profile{Symbol: symbol}

	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		profile.Name = trimSymbolSuffix(h1)
	}

	doc.Find("dt, span, strong").Each(func(_ int, sel *goquery.Selection) {
		label := strings.TrimSpace(sel.Text())
		switch {
		case profile.Sector == "" && strings.HasPrefix(label, "Sector"):
			profile.Sector = siblingValue(sel)
		case profile.Industry == "" && strings.HasPrefix(label, "Industry"):
			profile.Industry = siblingValue(sel)
		}
	})

	return profile
}

// trimSymbolSuffix drops the "(SYM)" tail of the page heading.
func trimSymbolSuffix(name string) string {
	if idx := strings.LastIndex(name, " ("); idx > 0 && strings.HasSuffix(name, ")") {
		return name[:idx]
	}
	return name
}

func siblingValue(sel *goquery.Selection) string {
	next := sel.Next()
	if next.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(next.Text())
}
