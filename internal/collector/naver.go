package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// ErrNoDividendCell is returned when the page has no cell at the selector.
var ErrNoDividendCell = errors.New("dividend cell not found")

const (
	naverFinanceURL        = "https://finance.naver.com"
	defaultDividendSelector = ".rate_info .per_table td"
)

// NaverDividendScraper reads a dividend yield from the first table cell that
// matches Selector on the Naver Finance item page. The page has no stable
// schema, so results are best effort.
type NaverDividendScraper struct {
	BaseURL  string
	Selector string
	Client   *http.Client
}

// NewNaverDividendScraper creates a scraper; an empty selector uses the default.
func NewNaverDividendScraper(selector, proxyURL string) *NaverDividendScraper {
	if selector == "" {
		selector = defaultDividendSelector
	}
	return &NaverDividendScraper{
		BaseURL:  naverFinanceURL,
		Selector: selector,
		Client:   NewHTTPClient(proxyURL),
	}
}

// DividendYield returns the scraped yield in percent.
func (s *NaverDividendScraper) DividendYield(ctx context.Context, name string) (float64, error) {
	u := fmt.Sprintf("%s/item/main.nhn?query=%s", s.BaseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("naver fetch: %w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("naver: status %d: %w", resp.StatusCode, ErrUpstream)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("naver parse: %w", err)
	}
	return parseDividendCell(doc, s.Selector)
}

func parseDividendCell(doc *goquery.Document, selector string) (float64, error) {
	cell := doc.Find(selector).First()
	if cell.Length() == 0 {
		return 0, ErrNoDividendCell
	}
	text := strings.TrimSpace(strings.ReplaceAll(cell.Text(), "%", ""))
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("parse dividend %q: %w", text, err)
	}
	f, _ := d.Float64()
	return f, nil
}
