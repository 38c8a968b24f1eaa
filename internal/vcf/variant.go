// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"strconv"
	"strings"
)

// Variant represents a single genomic variant from a VCF file.
// Immutable once parsed; enrichment stages read it but never write.
type Variant struct {
	Chrom       string                  // Chromosome name (e.g., "12", "chr12")
	Pos         int64                   // 1-based genomic position
	ID          string                  // Variant identifier (e.g., rs ID)
	Ref         string                  // Reference allele
	Alt         string                  // Alternate allele (single allele after splitting)
	Qual        string                  // Quality score, verbatim
	Filter      string                  // Filter status (PASS or filter name)
	Info        map[string]string       // INFO field key-value pairs (flags map to "True")
	Format      map[string][]string     // FORMAT key -> per-sample values
	Transcripts []*TranscriptAnnotation // VEP CSQ blocks, one per transcript
}

// TranscriptAnnotation is one VEP consequence block attached to a variant.
// Fields are keyed by the CSQ format declared in the VCF header.
type TranscriptAnnotation struct {
	Transcript string            // Transcript identifier, possibly versioned (Feature field)
	Gene       string            // Gene symbol (SYMBOL field)
	Fields     map[string]string // All CSQ fields, including the two above
}

// BaseTranscript returns the transcript identifier with any version
// suffix (the substring after the last '.') removed.
func (t *TranscriptAnnotation) BaseTranscript() string {
	return StripVersion(t.Transcript)
}

// StripVersion removes the version suffix from a transcript identifier,
// e.g. "NM_001007553.2" -> "NM_001007553".
func StripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}

// Key returns the variant identity as (chrom, pos, ref, alt), the exact
// match key used for known-variant lookup.
func (v *Variant) Key() string {
	return v.Chrom + ":" + strconv.FormatInt(v.Pos, 10) + ":" + v.Ref + ":" + v.Alt
}

// SplitMultiAllelic splits a multi-allelic variant into separate variants,
// one per alternate allele. INFO, FORMAT and CSQ blocks are shared.
func SplitMultiAllelic(v *Variant) []*Variant {
	alts := strings.Split(v.Alt, ",")
	if len(alts) == 1 {
		return []*Variant{v}
	}

	variants := make([]*Variant, len(alts))
	for i, alt := range alts {
		variants[i] = &Variant{
			Chrom:       v.Chrom,
			Pos:         v.Pos,
			ID:          v.ID,
			Ref:         v.Ref,
			Alt:         alt,
			Qual:        v.Qual,
			Filter:      v.Filter,
			Info:        v.Info,
			Format:      v.Format,
			Transcripts: v.Transcripts,
		}
	}

	return variants
}
