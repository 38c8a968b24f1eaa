// Package transcripts annotates report rows with preferred-transcript
// matches.
package transcripts

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/genomelab/vcfreport/internal/catalog"
	"github.com/genomelab/vcfreport/internal/report"
	"github.com/genomelab/vcfreport/internal/vcf"
)

// Strictness controls how transcript identifiers are compared.
type Strictness string

const (
	// StrictnessHigh requires byte-identical identifiers, version included.
	StrictnessHigh Strictness = "high"
	// StrictnessLow matches identifiers after stripping the version suffix.
	StrictnessLow Strictness = "low"
)

// ParseStrictness validates a strictness flag value. The empty string
// defaults to low.
func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(s) {
	case StrictnessHigh:
		return StrictnessHigh, nil
	case StrictnessLow, "":
		return StrictnessLow, nil
	}
	return "", fmt.Errorf("invalid transcript strictness %q: must be high or low", s)
}

// PreferredList maps gene symbol to the preferred transcript identifier
// for that gene. Immutable after load.
type PreferredList struct {
	byGene map[string]string
	logger *zap.Logger
}

// Load reads a tab-separated preferred transcripts file. The gene symbol
// is taken from the first column and the transcript identifier from the
// second. Rows without a second column are skipped.
func Load(path string) (*PreferredList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open preferred transcripts file: %w", err)
	}
	defer f.Close()

	list := &PreferredList{
		byGene: make(map[string]string),
		logger: zap.NewNop(),
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[1] == "" {
			continue
		}
		list.byGene[fields[0]] = fields[1]
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read preferred transcripts file: %w", err)
	}

	return list, nil
}

// SetLogger sets the logger for matching messages.
func (p *PreferredList) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Len returns the number of genes with a preferred transcript.
func (p *PreferredList) Len() int {
	return len(p.byGene)
}

// Lookup returns the preferred transcript for a gene symbol.
func (p *PreferredList) Lookup(gene string) (string, bool) {
	t, ok := p.byGene[gene]
	return t, ok
}

// Apply annotates every row's preferred-transcript cell in place. For
// transcript-expanded rows the row's own annotation is compared; otherwise
// the record's annotations are scanned in order and the first match wins.
// A row whose gene has no preferred entry keeps the Unknown value. This
// stage never fails.
func (p *PreferredList) Apply(rep *report.Report, strictness Strictness) {
	matched := 0

	for _, row := range rep.Rows {
		value := p.rowValue(row, strictness)
		row.Set(catalog.PreferredField, value)
		if value == "True" {
			matched++
		}
	}

	p.logger.Info("applied preferred transcripts",
		zap.String("strictness", string(strictness)),
		zap.Int("rows", len(rep.Rows)),
		zap.Int("matched", matched))
}

// rowValue resolves one row's preferred-transcript cell value.
func (p *PreferredList) rowValue(row *report.Row, strictness Strictness) string {
	anns := row.Variant.Transcripts
	if row.Transcript != nil {
		anns = []*vcf.TranscriptAnnotation{row.Transcript}
	}

	known := false
	for _, ann := range anns {
		preferred, ok := p.byGene[ann.Gene]
		if !ok {
			continue
		}
		known = true
		if matches(ann.Transcript, preferred, strictness) {
			return "True"
		}
	}

	if !known {
		return report.PreferredUnknown
	}
	return "False"
}

// matches compares a transcript identifier against the preferred one under
// the given strictness.
func matches(transcript, preferred string, strictness Strictness) bool {
	if strictness == StrictnessHigh {
		return transcript == preferred
	}
	return vcf.StripVersion(transcript) == vcf.StripVersion(preferred)
}
