package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/genomelab/vcfreport/internal/catalog"
	"github.com/genomelab/vcfreport/internal/vcf"
)

// ClassificationField is the header of the known-variant classification
// column, always serialized after the configured columns.
const ClassificationField = "Classification"

// PreferredUnknown is the preferred-transcript value used when no
// preferred list is loaded or the row's gene has no entry.
const PreferredUnknown = "Unknown"

// Row is one report line. Record-level cells repeat across the rows of an
// expanded variant; transcript-level cells differ per row.
type Row struct {
	Variant    *vcf.Variant
	Transcript *vcf.TranscriptAnnotation // nil unless transcript-expanded

	cells map[string]string
}

// Get returns the cell value for an output column name.
func (r *Row) Get(name string) string {
	return r.cells[name]
}

// Set overwrites the cell value for an output column name.
func (r *Row) Set(name, value string) {
	r.cells[name] = value
}

// Report is an ordered sequence of rows plus the resolved column sequence.
type Report struct {
	Columns []Column
	Rows    []*Row
}

// Build assembles the base report from the catalog's records under the
// resolved columns. When any column is VEP-sourced, each record expands to
// one row per transcript annotation. When excludeNonPass is set, records
// whose FILTER status is not PASS are dropped.
func Build(cat *catalog.Catalog, columns []Column, excludeNonPass bool) *Report {
	rep := &Report{Columns: columns}
	expand := NeedsExpansion(columns)

	for _, v := range cat.Variants {
		if excludeNonPass && v.Filter != "PASS" {
			continue
		}

		if expand && len(v.Transcripts) > 0 {
			for _, t := range v.Transcripts {
				rep.Rows = append(rep.Rows, buildRow(v, t, columns))
			}
		} else {
			rep.Rows = append(rep.Rows, buildRow(v, nil, columns))
		}
	}

	return rep
}

// buildRow populates one row's cells from the variant record.
func buildRow(v *vcf.Variant, t *vcf.TranscriptAnnotation, columns []Column) *Row {
	row := &Row{
		Variant:    v,
		Transcript: t,
		cells:      make(map[string]string, len(columns)+1),
	}

	for _, col := range columns {
		row.cells[col.Name] = cellValue(v, t, col.Field)
	}
	row.cells[ClassificationField] = ""

	return row
}

// cellValue extracts a single field value from the record, per source.
func cellValue(v *vcf.Variant, t *vcf.TranscriptAnnotation, field catalog.Field) string {
	switch field.Source {
	case catalog.SourceFilter:
		return v.Filter
	case catalog.SourceInfo:
		return v.Info[field.Header]
	case catalog.SourceFormat:
		// Per-sample values joined with ';' so comma-separated FORMAT
		// values like AD stay intact.
		return strings.Join(v.Format[field.Header], ";")
	case catalog.SourceVEP:
		if t != nil {
			return t.Fields[field.Header]
		}
		return ""
	case catalog.SourcePref:
		return PreferredUnknown
	}
	return ""
}

// Filter returns a derived report with the same column sequence containing
// only the rows keep reports true for. Rows are shared, not copied, and
// keep their relative order. The receiver is not mutated.
func (r *Report) Filter(keep func(*Row) bool) *Report {
	derived := &Report{Columns: r.Columns}
	for _, row := range r.Rows {
		if keep(row) {
			derived.Rows = append(derived.Rows, row)
		}
	}
	return derived
}

// Write serializes the report as tab-delimited text: one header line of
// column names followed by one line per row. The classification column is
// always last.
func (r *Report) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	headers := make([]string, 0, len(r.Columns)+1)
	for _, col := range r.Columns {
		headers = append(headers, col.Name)
	}
	headers = append(headers, ClassificationField)

	if _, err := bw.WriteString(strings.Join(headers, "\t") + "\n"); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	values := make([]string, len(headers))
	for _, row := range r.Rows {
		for i, name := range headers {
			values[i] = row.cells[name]
		}
		if _, err := bw.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}

	return bw.Flush()
}

// WriteFile serializes the report to path via a temp file and rename, so a
// report file only ever appears complete.
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path + ".tmp")
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	if err := r.Write(f); err != nil {
		f.Close()
		os.Remove(path + ".tmp")
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path + ".tmp")
		return fmt.Errorf("close report file: %w", err)
	}

	if err := os.Rename(path+".tmp", path); err != nil {
		os.Remove(path + ".tmp")
		return fmt.Errorf("rename report file: %w", err)
	}

	return nil
}
