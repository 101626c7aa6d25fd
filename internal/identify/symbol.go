package identify

import (
	"context"
	"fmt"

	"github.com/spherical/pdf-scanner/internal/domain"
)

// Symbol renders the page and decodes a QR symbol from the raster. The
// payload is used verbatim as the identifier.
type Symbol struct {
	decoder domain.SymbolDecoder
	scale   float64
}

// NewSymbol creates a symbol extractor rendering pages at scale.
func NewSymbol(decoder domain.SymbolDecoder, scale float64) (*Symbol, error) {
	if decoder == nil {
		return nil, domain.ConfigError("symbol decoder is required", nil)
	}
	if scale <= 0 {
		return nil, domain.ConfigError(fmt.Sprintf("symbol scale must be positive, got %g", scale), nil)
	}
	return &Symbol{decoder: decoder, scale: scale}, nil
}

// Strategy implements domain.IdentifierExtractor.
func (s *Symbol) Strategy() string {
	return StrategyQR
}

// Extract implements domain.IdentifierExtractor.
func (s *Symbol) Extract(ctx context.Context, page domain.Page) (domain.Identifier, bool, error) {
	img, err := page.Render(ctx, s.scale)
	if err != nil {
		return domain.Identifier{}, false, err
	}

	payload, found, err := s.decoder.Decode(ctx, img)
	if err != nil {
		return domain.Identifier{}, false, domain.ExtractionError(
			fmt.Sprintf("symbol decode failed on page %d", page.Number()), err)
	}
	if !found {
		return domain.Identifier{}, false, nil
	}
	return domain.Identifier{Value: payload, Strategy: StrategyQR}, true, nil
}
