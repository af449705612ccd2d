package extension

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a YAML profile configuration and applies it. Unknown
// fields are rejected.
func (p *Profile) LoadYAML(r io.Reader, catalog *Catalog) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode profile: %w", err)
	}
	return p.Apply(cfg, catalog)
}

// WriteYAML writes the profile configuration as YAML.
func (p *Profile) WriteYAML(w io.Writer, catalog *Catalog) error {
	cfg, err := p.Config(catalog)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return enc.Close()
}
