// Package identify implements the identifier extraction strategies: a
// fixed-width number in the page text, a QR payload decoded from the rendered
// page, or a number read back from the rendered page by OCR.
package identify

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spherical/pdf-scanner/internal/domain"
)

// Strategy names reported in domain.Identifier.
const (
	StrategyText = "text"
	StrategyQR   = "qr"
	StrategyOCR  = "ocr"
)

// DefaultDigits is the identifier width used by the scanned forms.
const DefaultDigits = 7

var digitRun = regexp.MustCompile(`[0-9]+`)

// PatternMatcher finds a run of exactly N ASCII digits bounded by non-digits
// or the token edges.
type PatternMatcher struct {
	digits int
	token  *regexp.Regexp
}

// NewPatternMatcher builds a matcher for identifiers of the given width.
func NewPatternMatcher(digits int) (*PatternMatcher, error) {
	if digits < 1 || digits > 64 {
		return nil, domain.ConfigError(fmt.Sprintf("identifier width must be between 1 and 64, got %d", digits), nil)
	}
	return &PatternMatcher{
		digits: digits,
		token:  regexp.MustCompile(fmt.Sprintf(`(?:^|[^0-9])([0-9]{%d})(?:[^0-9]|$)`, digits)),
	}, nil
}

// Match scans tokens in order. Each token contributes at most its first
// match; the matches are aggregated one per line and the first digit run of
// the aggregate is the identifier, so the earliest match wins.
func (m *PatternMatcher) Match(tokens []string) (string, bool) {
	var aggregate strings.Builder
	for _, tok := range tokens {
		if sm := m.token.FindStringSubmatch(tok); sm != nil {
			aggregate.WriteString(sm[1])
			aggregate.WriteByte('\n')
		}
	}

	run := digitRun.FindString(aggregate.String())
	return run, run != ""
}

// TextPattern extracts an identifier from the page's text layer. It never
// rasterises the page.
type TextPattern struct {
	matcher *PatternMatcher
}

// NewTextPattern creates a text extractor for identifiers of the given width.
func NewTextPattern(digits int) (*TextPattern, error) {
	m, err := NewPatternMatcher(digits)
	if err != nil {
		return nil, err
	}
	return &TextPattern{matcher: m}, nil
}

// Strategy implements domain.IdentifierExtractor.
func (t *TextPattern) Strategy() string {
	return StrategyText
}

// Extract implements domain.IdentifierExtractor.
func (t *TextPattern) Extract(ctx context.Context, page domain.Page) (domain.Identifier, bool, error) {
	tokens, err := page.Tokens(ctx)
	if err != nil {
		return domain.Identifier{}, false, err
	}

	value, ok := t.matcher.Match(tokens)
	if !ok {
		return domain.Identifier{}, false, nil
	}
	return domain.Identifier{Value: value, Strategy: StrategyText}, true, nil
}
