package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/genomelab/vcfreport/internal/bed"
	"github.com/genomelab/vcfreport/internal/report"
)

// applySingle writes one derived report filtered to the intervals of a
// single BED file. The base report is not mutated.
func (a *Assembler) applySingle(bedPath string, rep *report.Report, outDir, baseName string) error {
	set, err := bed.Load(bedPath)
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, derivedReportName(baseName, set.Name))
	if err := writeDerived(set, rep, path); err != nil {
		return err
	}

	a.logger.Info("wrote BED-filtered report",
		zap.String("bed", set.Name),
		zap.String("path", path))
	return nil
}

// bedResult is the outcome of one region set's derived report.
type bedResult struct {
	bedPath string
	outPath string
	err     error
}

// applyMultiple fans the base report out over every BED file in the
// folder using a bounded worker pool. Each region set is independent: a
// malformed BED file is logged and skipped without touching its siblings.
// Derived reports land in a sub-folder named after the BED folder.
func (a *Assembler) applyMultiple(bedFolder string, rep *report.Report, outDir, baseName string) error {
	entries, err := os.ReadDir(bedFolder)
	if err != nil {
		return fmt.Errorf("read bed folder: %w", err)
	}

	bedPaths := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".bed") {
			return "", false
		}
		return filepath.Join(bedFolder, e.Name()), true
	})

	if len(bedPaths) == 0 {
		a.logger.Warn("no BED files found in folder", zap.String("folder", bedFolder))
		return nil
	}

	groupDir := filepath.Join(outDir, filepath.Base(filepath.Clean(bedFolder)))
	if err := ensureDir(groupDir); err != nil {
		return err
	}

	workers := a.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(bedPaths) {
		workers = len(bedPaths)
	}

	paths := make(chan string)
	results := make(chan bedResult, len(bedPaths))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for bedPath := range paths {
				results <- deriveOne(bedPath, rep, groupDir, baseName)
			}
		}()
	}

	go func() {
		for _, p := range bedPaths {
			paths <- p
		}
		close(paths)
		wg.Wait()
		close(results)
	}()

	written := 0
	for r := range results {
		if r.err != nil {
			a.logger.Error("skipping BED file",
				zap.String("bed", r.bedPath),
				zap.Error(r.err))
			continue
		}
		written++
		a.logger.Info("wrote BED-filtered report",
			zap.String("bed", r.bedPath),
			zap.String("path", r.outPath))
	}

	a.logger.Info("finished BED folder",
		zap.String("folder", bedFolder),
		zap.Int("reports", written),
		zap.Int("skipped", len(bedPaths)-written))
	return nil
}

// deriveOne loads one region set and writes its derived report. Workers
// only read the shared base report.
func deriveOne(bedPath string, rep *report.Report, outDir, baseName string) bedResult {
	set, err := bed.Load(bedPath)
	if err != nil {
		return bedResult{bedPath: bedPath, err: err}
	}

	outPath := filepath.Join(outDir, derivedReportName(baseName, set.Name))
	if err := writeDerived(set, rep, outPath); err != nil {
		return bedResult{bedPath: bedPath, err: err}
	}
	return bedResult{bedPath: bedPath, outPath: outPath}
}

// writeDerived filters the base report to the region set and serializes
// the result. An empty region set yields an empty (header-only) report.
func writeDerived(set *bed.RegionSet, rep *report.Report, path string) error {
	derived := rep.Filter(func(row *report.Row) bool {
		return set.Contains(row.Variant.Chrom, row.Variant.Pos)
	})
	return derived.WriteFile(path)
}
