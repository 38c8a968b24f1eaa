package vcf

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVCF = `##fileformat=VCFv4.2
##INFO=<ID=DP,Number=1,Type=Integer,Description="Total Depth">
##INFO=<ID=AF,Number=A,Type=Float,Description="Allele Frequency">
##INFO=<ID=DB,Number=0,Type=Flag,Description="dbSNP membership">
##INFO=<ID=CSQ,Number=.,Type=String,Description="Consequence annotations from Ensembl VEP. Format: Allele|Consequence|IMPACT|SYMBOL|Feature">
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
##FORMAT=<ID=AD,Number=R,Type=Integer,Description="Allelic depths">
##FILTER=<ID=q10,Description="Quality below 10">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	SAMPLE1
chr1	100	rs1	A	T	50	PASS	DP=100;AF=0.5;DB;CSQ=T|missense_variant|MODERATE|TP53|NM_000546.6,T|intron_variant|MODIFIER|TP53|NM_001126112.3	GT:AD	0/1:50,50
chr2	200	.	G	C	30	q10	DP=80	GT	1/1
`

func TestParser_HeaderMetadata(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(testVCF))
	require.NoError(t, err)

	assert.Equal(t, []string{"DP", "AF", "DB"}, p.InfoKeys(), "CSQ must not appear among INFO keys")
	assert.Equal(t, []string{"GT", "AD"}, p.FormatKeys())
	assert.Equal(t, []string{"Allele", "Consequence", "IMPACT", "SYMBOL", "Feature"}, p.CSQFields())
	assert.Equal(t, []string{"SAMPLE1"}, p.SampleNames())
}

func TestParser_Next(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(testVCF))
	require.NoError(t, err)

	v, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "chr1", v.Chrom)
	assert.Equal(t, int64(100), v.Pos)
	assert.Equal(t, "rs1", v.ID)
	assert.Equal(t, "A", v.Ref)
	assert.Equal(t, "T", v.Alt)
	assert.Equal(t, "PASS", v.Filter)
	assert.Equal(t, "100", v.Info["DP"])
	assert.Equal(t, "True", v.Info["DB"], "flag-type INFO keys map to True")
	assert.Equal(t, []string{"0/1"}, v.Format["GT"])
	assert.Equal(t, []string{"50,50"}, v.Format["AD"])

	require.Len(t, v.Transcripts, 2)
	assert.Equal(t, "NM_000546.6", v.Transcripts[0].Transcript)
	assert.Equal(t, "TP53", v.Transcripts[0].Gene)
	assert.Equal(t, "missense_variant", v.Transcripts[0].Fields["Consequence"])
	assert.Equal(t, "NM_001126112.3", v.Transcripts[1].Transcript)

	v, err = p.Next()
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "q10", v.Filter)
	assert.Nil(t, v.Transcripts, "no CSQ value means no transcript annotations")

	v, err = p.Next()
	require.NoError(t, err)
	assert.Nil(t, v, "expected EOF")
}

func TestParser_Gzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.vcf.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte(testVCF))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	p, err := NewParser(path)
	require.NoError(t, err)
	defer p.Close()

	v, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "chr1", v.Chrom)
}

func TestParser_MissingFile(t *testing.T) {
	_, err := NewParser("/nonexistent/path.vcf")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParser_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "no chrom header",
			input: "##fileformat=VCFv4.2\n",
		},
		{
			name:  "too few columns",
			input: "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\nchr1\t100\t.\tA\n",
		},
		{
			name:  "bad position",
			input: "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\nchr1\tabc\t.\tA\tT\t.\tPASS\t.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParserFromReader(strings.NewReader(tt.input))
			if err == nil {
				_, err = p.Next()
			}
			require.Error(t, err)
			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}
