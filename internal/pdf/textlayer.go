package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/spherical/pdf-scanner/internal/domain"
)

// textLayer reads page text with the pure-Go ledongthuc/pdf reader. It
// groups glyph runs into rows, which mirrors how browser PDF viewers hand out
// text items.
type textLayer struct {
	reader *pdf.Reader
}

func openTextLayer(data []byte) (layer *textLayer, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			layer, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &textLayer{reader: r}, nil
}

func (t *textLayer) tokens(n int) (tokens []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			tokens, err = nil, domain.ExtractionError(fmt.Sprintf("failed to read text of page %d", n), fmt.Errorf("%v", r))
		}
	}()

	page := t.reader.Page(n)
	if page.V.IsNull() {
		return nil, nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, domain.ExtractionError(fmt.Sprintf("failed to read text of page %d", n), err)
	}

	for _, row := range rows {
		var sb strings.Builder
		for _, word := range row.Content {
			sb.WriteString(word.S)
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens, nil
}
