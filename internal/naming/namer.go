// Package naming maps identifiers to artifact filenames.
package naming

import (
	"strings"
	"unicode"

	"github.com/spherical/pdf-scanner/internal/domain"
)

// Placeholder is replaced by the identifier in a name template.
const Placeholder = "{identifier}"

// DefaultTemplate names artifacts after their identifier.
const DefaultTemplate = Placeholder + ".jpg"

// Namer formats artifact filenames from a template.
type Namer struct {
	template string
}

// NewNamer creates a namer. An empty template selects DefaultTemplate.
func NewNamer(template string) (*Namer, error) {
	if template == "" {
		template = DefaultTemplate
	}
	if !strings.Contains(template, Placeholder) {
		return nil, domain.ConfigError("name template must contain "+Placeholder, nil)
	}
	return &Namer{template: template}, nil
}

// NameFor returns the filename for identifier. The same identifier always
// yields the same name.
func (n *Namer) NameFor(identifier string) (string, error) {
	if strings.TrimSpace(identifier) == "" {
		return "", domain.NoIdentifierError("identifier is empty")
	}
	return strings.ReplaceAll(n.template, Placeholder, Sanitize(identifier)), nil
}

// Sanitize replaces characters that are unsafe in file names and object keys
// with '_'.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, s)
}
