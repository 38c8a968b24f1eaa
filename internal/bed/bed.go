// Package bed parses BED interval files into queryable region sets.
package bed

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Region is one genomic interval, half-open [Start, End).
type Region struct {
	Chrom string
	Start int64
	End   int64
	Name  string // optional fourth BED column
}

// RegionSet holds the intervals of one BED file, indexed by chromosome.
// Immutable after load.
type RegionSet struct {
	Name    string // BED file name without extension
	Regions []Region

	byChrom map[string][]Region
}

// ParseError represents a malformed BED line.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bed parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
}

// Load parses a BED file. Track, browser and comment lines are skipped.
// A file with no intervals yields an empty, valid region set.
func Load(path string) (*RegionSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bed file: %w", err)
	}
	defer f.Close()

	set := &RegionSet{
		Name:    baseName(path),
		byChrom: make(map[string][]Region),
	}

	scanner := bufio.NewScanner(f)
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" ||
			strings.HasPrefix(text, "#") ||
			strings.HasPrefix(text, "track") ||
			strings.HasPrefix(text, "browser") {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < 3 {
			return nil, &ParseError{
				Path:    path,
				Line:    line,
				Message: fmt.Sprintf("expected at least 3 columns, found %d", len(fields)),
			}
		}

		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, &ParseError{
				Path:    path,
				Line:    line,
				Message: fmt.Sprintf("invalid start coordinate: %s", fields[1]),
			}
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, &ParseError{
				Path:    path,
				Line:    line,
				Message: fmt.Sprintf("invalid end coordinate: %s", fields[2]),
			}
		}

		region := Region{Chrom: fields[0], Start: start, End: end}
		if len(fields) > 3 {
			region.Name = fields[3]
		}

		set.Regions = append(set.Regions, region)
		set.byChrom[region.Chrom] = append(set.byChrom[region.Chrom], region)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read bed file: %w", err)
	}

	return set, nil
}

// Contains reports whether the position falls inside any interval of the
// set, using half-open semantics (start <= pos < end). Chromosome names
// are compared verbatim. Overlapping intervals are a membership test, not
// a count.
func (s *RegionSet) Contains(chrom string, pos int64) bool {
	for _, r := range s.byChrom[chrom] {
		if pos >= r.Start && pos < r.End {
			return true
		}
	}
	return false
}

// Len returns the number of intervals in the set.
func (s *RegionSet) Len() int {
	return len(s.Regions)
}

// baseName strips the directory and extension from a BED path, giving the
// name used in derived report files.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
