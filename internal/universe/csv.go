// Package universe loads, saves and refreshes the ticker universe snapshot.
package universe

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"StockScope/internal/model"
)

// ErrMissingColumn is returned when the snapshot lacks the ticker or name column.
var ErrMissingColumn = errors.New("missing required column")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Header is the column order written by Save.
var Header = []string{"ticker", "name", "per", "pbr", "dividend_yield", "volume", "return_3m"}

// aliases maps accepted header spellings to canonical column names. The
// Korean labels are what the legacy updater wrote.
var aliases = map[string]string{
	"ticker":         "ticker",
	"name":           "name",
	"per":            "per",
	"pbr":            "pbr",
	"dividend_yield": "dividend_yield",
	"배당률":            "dividend_yield",
	"volume":         "volume",
	"거래량":            "volume",
	"return_3m":      "return_3m",
	"3개월수익률":         "return_3m",
}

// Load reads a universe snapshot. Only the ticker and name columns are
// required; numeric columns that are absent or unparsable read as 0.
func Load(path string) ([]model.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	return Parse(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
}

// Parse reads a snapshot from r.
func Parse(r io.Reader) ([]model.Listing, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range head {
		key := strings.ToLower(strings.TrimSpace(string(bytes.TrimPrefix([]byte(h), utf8BOM))))
		if canon, ok := aliases[key]; ok {
			cols[canon] = i
		}
	}
	for _, req := range []string{"ticker", "name"} {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, req)
		}
	}

	var out []model.Listing
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		field := func(name string) string {
			if i, ok := cols[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		num := func(name string) float64 {
			v, _ := strconv.ParseFloat(field(name), 64)
			return v
		}
		ticker := field("ticker")
		if ticker == "" {
			continue
		}
		out = append(out, model.Listing{
			Ticker:        ticker,
			Name:          field("name"),
			PER:           num("per"),
			PBR:           num("pbr"),
			DividendYield: num("dividend_yield"),
			Volume:        num("volume"),
			Return3M:      num("return_3m"),
		})
	}
	return out, nil
}

// Save writes listings as a UTF-8 CSV with a BOM, replacing path atomically.
func Save(path string, listings []model.Listing) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, l := range listings {
		if err := w.Write([]string{l.Ticker, l.Name, f(l.PER), f(l.PBR), f(l.DividendYield), f(l.Volume), f(l.Return3M)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode universe: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write universe: %w", err)
	}
	return os.Rename(tmp, path)
}

// Find returns the listing whose ticker or name matches query, ignoring case.
func Find(listings []model.Listing, query string) (model.Listing, bool) {
	q := strings.TrimSpace(query)
	for _, l := range listings {
		if strings.EqualFold(l.Ticker, q) || strings.EqualFold(l.Name, q) {
			return l, true
		}
	}
	return model.Listing{}, false
}
