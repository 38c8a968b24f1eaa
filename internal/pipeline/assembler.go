// Package pipeline orchestrates report assembly: base report building,
// enrichment stages in fixed order, and derived per-region reports.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/genomelab/vcfreport/internal/catalog"
	"github.com/genomelab/vcfreport/internal/known"
	"github.com/genomelab/vcfreport/internal/report"
	"github.com/genomelab/vcfreport/internal/transcripts"
)

// BedKind discriminates the BED input modes.
type BedKind int

const (
	BedNone BedKind = iota
	BedSingle
	BedFolder
)

// BedInput is the tagged single-BED / BED-folder / no-BED choice. The
// constructors are the only way to build one, so the single-vs-folder
// exclusivity holds by construction.
type BedInput struct {
	kind BedKind
	path string
}

func NoBed() BedInput                { return BedInput{} }
func SingleBed(path string) BedInput { return BedInput{kind: BedSingle, path: path} }
func FolderBed(path string) BedInput { return BedInput{kind: BedFolder, path: path} }

// Kind returns the input mode.
func (b BedInput) Kind() BedKind { return b.kind }

// Path returns the BED file or folder path; empty for BedNone.
func (b BedInput) Path() string { return b.path }

// Assembler runs the enrichment stages over one catalog in fixed order:
// build, FILTER exclusion, preferred transcripts, known variants, BED
// filtering. Optional stages are skipped when their input is nil.
type Assembler struct {
	Catalog        *catalog.Catalog
	Config         *report.Config             // nil selects all declared fields
	Preferred      *transcripts.PreferredList // nil leaves the Preferred column Unknown
	Strictness     transcripts.Strictness
	Known          *known.Index // nil leaves classifications empty
	Bed            BedInput
	ExcludeNonPass bool
	Workers        int // multi-BED worker count; <=0 means NumCPU

	logger *zap.Logger
}

// New creates an assembler for the given catalog.
func New(cat *catalog.Catalog) *Assembler {
	return &Assembler{
		Catalog:    cat,
		Strictness: transcripts.StrictnessLow,
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for stage messages.
func (a *Assembler) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Run builds, enriches and serializes the base report plus any derived
// per-region reports under outDir. baseName is the base report file name.
// Classification DataErrors are logged per record and returned after all
// reports are written; they do not stop report production.
func (a *Assembler) Run(outDir, baseName string) error {
	columns, err := report.Resolve(a.Config, a.Catalog)
	if err != nil {
		return err
	}
	if a.Config == nil {
		a.logger.Info("no config file found, outputting all data from VCF")
	}

	rep := report.Build(a.Catalog, columns, a.ExcludeNonPass)
	a.logger.Info("built base report",
		zap.Int("records", len(a.Catalog.Variants)),
		zap.Int("rows", len(rep.Rows)),
		zap.Int("columns", len(columns)),
		zap.Bool("pass_only", a.ExcludeNonPass))

	if a.Preferred != nil {
		a.Preferred.SetLogger(a.logger)
		a.Preferred.Apply(rep, a.Strictness)
	} else {
		a.logger.Info("no preferred transcripts file provided, Preferred column labelled Unknown")
	}

	var classifyErr error
	if a.Known != nil {
		a.Known.SetLogger(a.logger)
		classifyErr = a.Known.Apply(rep)
	} else {
		a.logger.Info("no known variants file provided, Classification column left empty")
	}

	basePath := filepath.Join(outDir, baseName)
	if err := rep.WriteFile(basePath); err != nil {
		return err
	}
	a.logger.Info("wrote base report", zap.String("path", basePath))

	switch a.Bed.Kind() {
	case BedSingle:
		if err := a.applySingle(a.Bed.Path(), rep, outDir, baseName); err != nil {
			return err
		}
	case BedFolder:
		if err := a.applyMultiple(a.Bed.Path(), rep, outDir, baseName); err != nil {
			return err
		}
	default:
		a.logger.Info("no BED files provided")
	}

	return classifyErr
}

// BaseReportName derives the base report file name from the input VCF
// path, e.g. sample.vcf.gz -> sample_report.txt.
func BaseReportName(inputPath string) string {
	stem := filepath.Base(inputPath)
	stem = strings.TrimSuffix(stem, ".gz")
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	return stem + "_report.txt"
}

// derivedReportName appends the region set name to the base report name,
// e.g. sample_report.txt + panel -> sample_report_panel.txt.
func derivedReportName(baseName, setName string) string {
	ext := filepath.Ext(baseName)
	return strings.TrimSuffix(baseName, ext) + "_" + setName + ext
}

// ensureDir creates the directory if it does not already exist.
func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}
