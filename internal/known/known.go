// Package known indexes a known-variants VCF and attaches classification
// codes to report rows.
package known

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/genomelab/vcfreport/internal/report"
	"github.com/genomelab/vcfreport/internal/vcf"
)

// classificationKey is the INFO annotation every known-variants record
// must carry.
const classificationKey = "Classification"

// Classification code legend.
var classificationLabels = map[string]string{
	"0": "Artifact",
	"1": "Benign",
	"2": "Likely benign",
	"3": "VUS",
	"4": "Likely pathogenic",
	"5": "Pathogenic",
}

// DataError reports a known-variant record whose classification code is
// outside the 0-5 range.
type DataError struct {
	Variant string
	Code    string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("variant %s: classification code %q is not in 0-5", e.Variant, e.Code)
}

// Index maps variant identity (chrom, pos, ref, alt) to a classification
// code. Immutable after load; lookups are O(1).
type Index struct {
	codes  map[string]string
	logger *zap.Logger
}

// Load builds the index from a known-variants VCF. Multi-allelic records
// are split so each alternate allele is indexed separately. Records
// without a Classification INFO annotation make the whole load fail.
func Load(path string) (*Index, error) {
	parser, err := vcf.NewParser(path)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	idx := &Index{
		codes:  make(map[string]string),
		logger: zap.NewNop(),
	}

	for {
		v, err := parser.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			break
		}

		code, ok := v.Info[classificationKey]
		if !ok {
			return nil, &report.ConfigError{
				Message: fmt.Sprintf("known variants file: record %s:%d has no %s annotation",
					v.Chrom, v.Pos, classificationKey),
			}
		}

		for _, split := range vcf.SplitMultiAllelic(v) {
			idx.codes[split.Key()] = code
		}
	}

	return idx, nil
}

// SetLogger sets the logger for apply messages.
func (i *Index) SetLogger(l *zap.Logger) {
	i.logger = l
}

// Len returns the number of indexed variant identities.
func (i *Index) Len() int {
	return len(i.codes)
}

// Apply writes the classification code into every matching row's
// classification cell. Rows without an index match keep the empty value.
// Matched codes outside 0-5 are logged per row and returned joined as
// DataErrors; other rows are still annotated.
func (i *Index) Apply(rep *report.Report) error {
	var errs []error
	matched := 0

	for _, row := range rep.Rows {
		code, ok := i.codes[row.Variant.Key()]
		if !ok {
			continue
		}

		if _, valid := classificationLabels[code]; !valid {
			err := &DataError{Variant: row.Variant.Key(), Code: code}
			i.logger.Error("invalid classification code",
				zap.String("variant", err.Variant),
				zap.String("code", err.Code))
			errs = append(errs, err)
			continue
		}

		row.Set(report.ClassificationField, code)
		matched++
	}

	i.logger.Info("applied known variant classifications",
		zap.Int("indexed", len(i.codes)),
		zap.Int("matched", matched))

	return errors.Join(errs...)
}

// Label returns the human-readable meaning of a classification code.
func Label(code string) string {
	return classificationLabels[code]
}
