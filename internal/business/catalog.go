package business

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Catalog is the static product/brand facts document. It has no fixed
// schema: the document is validated as JSON, then injected verbatim as
// textual context into customer-mode prompts.
type Catalog struct {
	raw string
}

// LoadCatalog reads and validates the catalog document at path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading catalog %s: %v", ErrConfigValidation, path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog validates raw catalog bytes.
func ParseCatalog(data []byte) (*Catalog, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: catalog is not valid JSON", ErrConfigValidation)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: compacting catalog: %v", ErrConfigValidation, err)
	}
	return &Catalog{raw: buf.String()}, nil
}

// JSON returns the catalog as a compact JSON string for prompt context.
func (c *Catalog) JSON() string {
	return c.raw
}
