package transcripts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomelab/vcfreport/internal/catalog"
	"github.com/genomelab/vcfreport/internal/report"
)

const testVCF = `##fileformat=VCFv4.2
##INFO=<ID=DP,Number=1,Type=Integer,Description="Total Depth">
##INFO=<ID=CSQ,Number=.,Type=String,Description="Consequence annotations from Ensembl VEP. Format: Allele|SYMBOL|Feature">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
chr1	100	.	A	T	50	PASS	DP=100;CSQ=T|TP53|NM_001007553.2,T|TP53|NM_000546.6
chr1	200	.	C	G	40	PASS	DP=90;CSQ=G|BRCA2|NM_000059.4
chr1	300	.	G	A	40	PASS	DP=80
`

func buildTestReport(t *testing.T, expand bool) *report.Report {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.vcf")
	require.NoError(t, os.WriteFile(path, []byte(testVCF), 0o644))
	cat, err := catalog.Load(path)
	require.NoError(t, err)

	entries := []report.Entry{
		{Header: catalog.PreferredField, Source: catalog.SourcePref},
	}
	if expand {
		entries = append(entries, report.Entry{Header: "Feature", Source: catalog.SourceVEP})
	}
	columns, err := report.Resolve(&report.Config{Entries: entries}, cat)
	require.NoError(t, err)

	return report.Build(cat, columns, false)
}

func loadList(t *testing.T, content string) *PreferredList {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preferred.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	list, err := Load(path)
	require.NoError(t, err)
	return list
}

func TestParseStrictness(t *testing.T) {
	tests := []struct {
		input    string
		expected Strictness
		wantErr  bool
	}{
		{"high", StrictnessHigh, false},
		{"low", StrictnessLow, false},
		{"", StrictnessLow, false},
		{"medium", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStrictness(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
		} else {
			require.NoError(t, err, tt.input)
			assert.Equal(t, tt.expected, got)
		}
	}
}

func TestLoad(t *testing.T) {
	list := loadList(t, "TP53\tNM_001007553.1\nBRCA2\tNM_000059.4\nshort-row\n")

	assert.Equal(t, 2, list.Len())
	preferred, ok := list.Lookup("TP53")
	require.True(t, ok)
	assert.Equal(t, "NM_001007553.1", preferred)
}

func TestApply_VersionTolerance(t *testing.T) {
	// Preferred NM_001007553.1 vs variant transcript NM_001007553.2:
	// low matches, high does not.
	list := loadList(t, "TP53\tNM_001007553.1\n")

	low := buildTestReport(t, false)
	list.Apply(low, StrictnessLow)
	assert.Equal(t, "True", low.Rows[0].Get(catalog.PreferredField))

	high := buildTestReport(t, false)
	list.Apply(high, StrictnessHigh)
	assert.Equal(t, "False", high.Rows[0].Get(catalog.PreferredField))
}

func TestApply_ExpandedRows(t *testing.T) {
	list := loadList(t, "TP53\tNM_000546.6\n")

	rep := buildTestReport(t, true)
	list.Apply(rep, StrictnessHigh)

	// Row per transcript: only the NM_000546.6 row matches.
	require.Len(t, rep.Rows, 4)
	assert.Equal(t, "False", rep.Rows[0].Get(catalog.PreferredField))
	assert.Equal(t, "True", rep.Rows[1].Get(catalog.PreferredField))
}

func TestApply_UnknownGene(t *testing.T) {
	list := loadList(t, "TP53\tNM_000546.6\n")

	rep := buildTestReport(t, false)
	list.Apply(rep, StrictnessLow)

	// BRCA2 has no entry, and the third record has no transcripts at all.
	assert.Equal(t, report.PreferredUnknown, rep.Rows[1].Get(catalog.PreferredField))
	assert.Equal(t, report.PreferredUnknown, rep.Rows[2].Get(catalog.PreferredField))
}

func TestApply_NoListLeavesUnknown(t *testing.T) {
	rep := buildTestReport(t, false)
	for _, row := range rep.Rows {
		assert.Equal(t, report.PreferredUnknown, row.Get(catalog.PreferredField))
	}
}
