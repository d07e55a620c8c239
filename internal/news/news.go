// Package news scrapes search-result headlines and extracts frequent keywords.
package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoHeadlines is returned when the page has no matching news items.
var ErrNoHeadlines = errors.New("no headlines found")

const (
	naverSearchURL  = "https://search.naver.com"
	defaultItemSel  = "ul.list_news div.news_wrap.api_ani_send"
	defaultTitleSel = "a.news_tit"
	headlineLimit   = 5
	keywordLimit    = 5
)

// Stopwords are dropped from keyword counts.
var Stopwords = map[string]bool{
	"관련": true, "보도": true, "기자": true, "속보": true, "위해": true, "대해": true, "및": true,
	"때문": true, "부터": true, "까지": true, "현재": true, "오늘": true, "내일": true,
}

// Client scrapes the news search page. The markup has no stable schema;
// selectors are configurable.
type Client struct {
	BaseURL       string
	ItemSelector  string
	TitleSelector string
	HTTP          *http.Client
}

// NewClient creates a Client with the default selectors.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL:       naverSearchURL,
		ItemSelector:  defaultItemSel,
		TitleSelector: defaultTitleSel,
		HTTP:          httpClient,
	}
}

// Headlines returns up to five headlines for keyword.
func (c *Client) Headlines(ctx context.Context, keyword string) ([]string, error) {
	u := fmt.Sprintf("%s/search.naver?where=news&query=%s&sm=tab_opt", c.BaseURL, url.QueryEscape(keyword))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("news parse: %w", err)
	}
	return c.parse(doc), nil
}

func (c *Client) parse(doc *goquery.Document) []string {
	var out []string
	doc.Find(c.ItemSelector).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if title := strings.TrimSpace(item.Find(c.TitleSelector).First().Text()); title != "" {
			out = append(out, title)
		}
		return len(out) < headlineLimit
	})
	return out
}

// Keywords fetches headlines for keyword and returns their top keywords.
func (c *Client) Keywords(ctx context.Context, keyword string) ([]string, error) {
	hs, err := c.Headlines(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(hs) == 0 {
		return nil, ErrNoHeadlines
	}
	return ExtractKeywords(hs, keywordLimit), nil
}

// clean keeps Hangul syllables, digits and whitespace.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '가' && r <= '힣', r >= '0' && r <= '9', unicode.IsSpace(r):
			return r
		}
		return -1
	}, s)
}

// ExtractKeywords returns the n most frequent words of more than one rune,
// excluding stopwords. Ties keep first-appearance order.
func ExtractKeywords(headlines []string, n int) []string {
	counts := map[string]int{}
	var order []string
	for _, h := range headlines {
		for _, w := range strings.Fields(clean(h)) {
			if utf8.RuneCountInString(w) <= 1 || Stopwords[w] {
				continue
			}
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > n {
		order = order[:n]
	}
	return order
}
