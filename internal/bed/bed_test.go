package bed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBed(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeBed(t, "panel.bed", `track name="test panel"
# a comment
chr1	100	200	exon1
chr1	500	600
chr2	0	50	exon2
`)

	set, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "panel", set.Name)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, Region{Chrom: "chr1", Start: 100, End: 200, Name: "exon1"}, set.Regions[0])
	assert.Equal(t, "", set.Regions[1].Name)
}

func TestLoad_Empty(t *testing.T) {
	set, err := Load(writeBed(t, "empty.bed", "track name=empty\n"))
	require.NoError(t, err)
	assert.Zero(t, set.Len(), "interval-free file is valid and empty")
	assert.False(t, set.Contains("chr1", 100))
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too few columns", "chr1\t100\n"},
		{"bad start", "chr1\tabc\t200\n"},
		{"bad end", "chr1\t100\txyz\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeBed(t, "bad.bed", tt.content))
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestContains_HalfOpen(t *testing.T) {
	set, err := Load(writeBed(t, "r.bed", "chr1\t100\t200\n"))
	require.NoError(t, err)

	tests := []struct {
		pos      int64
		expected bool
	}{
		{99, false},
		{100, true},
		{199, true},
		{200, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, set.Contains("chr1", tt.pos), "pos %d", tt.pos)
	}

	assert.False(t, set.Contains("1", 150), "chromosome comparison is exact string match")
}

func TestContains_OverlappingIntervals(t *testing.T) {
	set, err := Load(writeBed(t, "o.bed", "chr1\t100\t200\nchr1\t150\t250\n"))
	require.NoError(t, err)
	assert.True(t, set.Contains("chr1", 175), "overlap is a membership test, not a count")
}
