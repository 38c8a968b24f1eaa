// Package report builds, enriches and serializes tab-delimited variant
// reports.
package report

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/genomelab/vcfreport/internal/catalog"
)

// Entry is one config row: which field to report and under what name.
type Entry struct {
	Header string
	Source catalog.Source
	Alias  string // optional alternative column header
}

// Config is an ordered field selection. Entry order fixes the left-to-right
// column order of the report.
type Config struct {
	Entries []Entry
}

// ConfigError reports a config row that cannot be satisfied.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Message
}

// LoadConfig reads a tab-separated config file. Each row is
// header<TAB>source[<TAB>alias]; source must be one of
// info, format, vep, filter or pref.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	cfg := &Config{}
	scanner := bufio.NewScanner(f)
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			return nil, &ConfigError{
				Message: fmt.Sprintf("line %d: expected header<TAB>source, found %q", line, text),
			}
		}

		source := catalog.Source(fields[1])
		if !source.Valid() {
			return nil, &ConfigError{
				Message: fmt.Sprintf("line %d: unknown source %q", line, fields[1]),
			}
		}

		entry := Entry{Header: fields[0], Source: source}
		if len(fields) > 2 && fields[2] != "" {
			entry.Alias = fields[2]
		}
		cfg.Entries = append(cfg.Entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return cfg, nil
}

// Column is one resolved output column.
type Column struct {
	Name  string // output header (alias when given)
	Field catalog.Field
}

// Resolve maps config entries onto the catalog's declared fields,
// establishing output column order. A nil config selects every declared
// field in catalog-discovery order.
func Resolve(cfg *Config, cat *catalog.Catalog) ([]Column, error) {
	if cfg == nil {
		fields := cat.Fields()
		columns := make([]Column, len(fields))
		for i, f := range fields {
			columns[i] = Column{Name: f.Header, Field: f}
		}
		return columns, nil
	}

	columns := make([]Column, 0, len(cfg.Entries))
	for _, e := range cfg.Entries {
		field, ok := cat.Lookup(e.Header, e.Source)
		if !ok {
			return nil, &ConfigError{
				Message: fmt.Sprintf("field %q (source %s) is not declared in the VCF", e.Header, e.Source),
			}
		}

		name := e.Header
		if e.Alias != "" {
			name = e.Alias
		}
		columns = append(columns, Column{Name: name, Field: field})
	}

	return columns, nil
}

// NeedsExpansion reports whether the resolved columns require one report
// row per (record, transcript) pair: any VEP-sourced column does.
func NeedsExpansion(columns []Column) bool {
	for _, col := range columns {
		if col.Field.Source == catalog.SourceVEP {
			return true
		}
	}
	return false
}
