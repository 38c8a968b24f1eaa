// Package catalog loads a VCF into memory and exposes the set of
// report-eligible fields declared by its header.
package catalog

import (
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/genomelab/vcfreport/internal/vcf"
)

// Source identifies where a report field's value comes from within a
// variant record.
type Source string

const (
	SourceInfo   Source = "info"
	SourceFormat Source = "format"
	SourceVEP    Source = "vep"
	SourceFilter Source = "filter"
	SourcePref   Source = "pref"
)

// Valid reports whether s is one of the recognised sources.
func (s Source) Valid() bool {
	switch s {
	case SourceInfo, SourceFormat, SourceVEP, SourceFilter, SourcePref:
		return true
	}
	return false
}

// PreferredField is the header of the synthetic preferred-transcript field.
const PreferredField = "Preferred"

// FilterField is the header of the FILTER status field.
const FilterField = "Filter"

// Field is one declared, report-eligible field.
type Field struct {
	Header string
	Source Source
}

// Catalog holds the parsed variant records of one VCF together with the
// declared field catalog. Records are split per alternate allele at load,
// so every record carries exactly one alt.
type Catalog struct {
	Variants    []*vcf.Variant
	SampleNames []string

	fields []Field
}

// Load parses the VCF at path into a Catalog. The file handle is released
// before Load returns.
func Load(path string) (*Catalog, error) {
	parser, err := vcf.NewParser(path)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	c := &Catalog{
		SampleNames: parser.SampleNames(),
	}

	for {
		v, err := parser.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			break
		}
		c.Variants = append(c.Variants, vcf.SplitMultiAllelic(v)...)
	}

	c.fields = discoverFields(parser)

	return c, nil
}

// discoverFields assembles the field catalog in discovery order:
// FILTER, INFO, FORMAT, VEP, then the synthetic preferred-transcript field.
func discoverFields(p *vcf.Parser) []Field {
	fields := []Field{{Header: FilterField, Source: SourceFilter}}

	for _, key := range lo.Uniq(p.InfoKeys()) {
		fields = append(fields, Field{Header: key, Source: SourceInfo})
	}
	for _, key := range lo.Uniq(p.FormatKeys()) {
		fields = append(fields, Field{Header: key, Source: SourceFormat})
	}
	for _, key := range lo.Uniq(p.CSQFields()) {
		fields = append(fields, Field{Header: key, Source: SourceVEP})
	}

	return append(fields, Field{Header: PreferredField, Source: SourcePref})
}

// Fields returns the declared field catalog in discovery order.
func (c *Catalog) Fields() []Field {
	return c.fields
}

// Lookup finds the declared field with the given header and source.
func (c *Catalog) Lookup(header string, source Source) (Field, bool) {
	return lo.Find(c.fields, func(f Field) bool {
		return f.Header == header && f.Source == source
	})
}

// HasVEP reports whether the loaded VCF declared VEP annotations.
func (c *Catalog) HasVEP() bool {
	return lo.SomeBy(c.fields, func(f Field) bool { return f.Source == SourceVEP })
}

// List writes the field catalog as tab-separated header/source rows, the
// same shape the config loader reads, so the output can be redirected
// straight into a config file.
func (c *Catalog) List(w io.Writer) error {
	for _, f := range c.fields {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", f.Header, f.Source); err != nil {
			return fmt.Errorf("write field listing: %w", err)
		}
	}
	return nil
}
