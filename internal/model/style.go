package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStyle is returned by ParseStyle for unrecognised input.
var ErrUnknownStyle = errors.New("unknown investment style")

// Style is the investor's selected strategy.
type Style string

const (
	Aggressive Style = "AGGRESSIVE"
	Stable     Style = "STABLE"
	Dividend   Style = "DIVIDEND"
)

// Styles lists every style in display order.
var Styles = []Style{Aggressive, Stable, Dividend}

// ParseStyle accepts English names (any case) and the Korean UI labels.
func ParseStyle(s string) (Style, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AGGRESSIVE", "공격적":
		return Aggressive, nil
	case "STABLE", "안정적":
		return Stable, nil
	case "DIVIDEND", "배당형":
		return Dividend, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// Label returns the Korean display label.
func (s Style) Label() string {
	switch s {
	case Aggressive:
		return "공격적"
	case Stable:
		return "안정적"
	case Dividend:
		return "배당형"
	}
	return string(s)
}
