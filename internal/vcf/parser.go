// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Header metadata line prefixes that declare report-relevant fields.
const (
	infoPrefix   = "##INFO=<ID="
	formatPrefix = "##FORMAT=<ID="
	csqKey       = "CSQ"
)

// Parser reads variants from a VCF file.
type Parser struct {
	reader      *bufio.Reader
	file        *os.File
	gzipReader  *gzip.Reader
	lineNumber  int
	header      []string
	sampleNames []string // sample names from #CHROM header line
	infoKeys    []string // ##INFO IDs in declaration order, CSQ excluded
	formatKeys  []string // ##FORMAT IDs in declaration order
	csqFields   []string // VEP CSQ sub-fields from the CSQ INFO description
}

// NewParser creates a new VCF parser for the given file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	// Seek back to beginning
	_, err = file.Seek(0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	// Parse header
	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// parseHeader reads and stores VCF header lines, collecting the declared
// INFO and FORMAT IDs and, when a CSQ annotation is declared, the VEP
// sub-field names from its Format description.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			p.header = append(p.header, line)
			p.parseMetaLine(line)
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			p.header = append(p.header, line)
			// Extract sample names from columns after FORMAT (index 9+)
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				p.sampleNames = fields[9:]
			}
			return nil
		}

		// Non-header line encountered without #CHROM
		return &ParseError{
			Line:    p.lineNumber,
			Message: "expected #CHROM header line",
		}
	}

	return &ParseError{
		Line:    p.lineNumber,
		Message: "no #CHROM header line found",
	}
}

// parseMetaLine records field declarations from a ## header line.
func (p *Parser) parseMetaLine(line string) {
	switch {
	case strings.HasPrefix(line, infoPrefix):
		id := metaID(line, infoPrefix)
		if id == csqKey {
			p.csqFields = parseCSQFormat(line)
			return
		}
		p.infoKeys = append(p.infoKeys, id)
	case strings.HasPrefix(line, formatPrefix):
		p.formatKeys = append(p.formatKeys, metaID(line, formatPrefix))
	}
}

// metaID extracts the ID value from a ##INFO/##FORMAT declaration.
func metaID(line, prefix string) string {
	rest := line[len(prefix):]
	if idx := strings.IndexAny(rest, ",>"); idx != -1 {
		return rest[:idx]
	}
	return rest
}

// parseCSQFormat extracts the pipe-separated VEP sub-field names from a
// CSQ INFO declaration, e.g. `Description="... Format: Allele|SYMBOL|Feature">`.
func parseCSQFormat(line string) []string {
	idx := strings.Index(line, "Format: ")
	if idx == -1 {
		return nil
	}
	format := line[idx+len("Format: "):]
	format = strings.TrimRight(format, `">`)
	if format == "" {
		return nil
	}
	return strings.Split(format, "|")
}

// Next reads the next variant from the VCF file.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read variant line: %w", err)
	}
	p.lineNumber++

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return p.Next() // Skip empty lines
	}

	return p.parseLine(line)
}

// parseLine parses a single VCF data line into a Variant.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	v := &Variant{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Alt:    fields[4],
		Qual:   fields[5],
		Filter: fields[6],
		Info:   parseInfo(fields[7]),
	}

	v.Transcripts = p.parseCSQ(v.Info)

	// FORMAT + sample columns, when present
	if len(fields) > 9 {
		format, err := parseFormat(fields[8], fields[9:])
		if err != nil {
			return nil, &ParseError{
				Line:    p.lineNumber,
				Message: err.Error(),
			}
		}
		v.Format = format
	}

	return v, nil
}

// parseInfo parses the INFO field into a map. Flag-type keys map to "True".
func parseInfo(info string) map[string]string {
	result := make(map[string]string)
	if info == "." {
		return result
	}

	for _, kv := range strings.Split(info, ";") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		} else {
			// Flag-type INFO field
			result[parts[0]] = "True"
		}
	}

	return result
}

// parseFormat zips the FORMAT keys with each sample column.
func parseFormat(format string, samples []string) (map[string][]string, error) {
	keys := strings.Split(format, ":")
	result := make(map[string][]string, len(keys))

	for _, sample := range samples {
		values := strings.Split(sample, ":")
		if len(values) > len(keys) {
			return nil, fmt.Errorf("sample column has %d values for %d FORMAT keys", len(values), len(keys))
		}
		for i, key := range keys {
			// Trailing FORMAT fields may be omitted from a sample column
			if i < len(values) {
				result[key] = append(result[key], values[i])
			} else {
				result[key] = append(result[key], ".")
			}
		}
	}

	return result, nil
}

// parseCSQ splits the CSQ INFO value into per-transcript annotation blocks
// using the sub-field names declared in the header.
func (p *Parser) parseCSQ(info map[string]string) []*TranscriptAnnotation {
	raw, ok := info[csqKey]
	if !ok || len(p.csqFields) == 0 {
		return nil
	}

	blocks := strings.Split(raw, ",")
	anns := make([]*TranscriptAnnotation, 0, len(blocks))

	for _, block := range blocks {
		values := strings.Split(block, "|")
		fields := make(map[string]string, len(p.csqFields))
		for i, name := range p.csqFields {
			if i < len(values) {
				fields[name] = values[i]
			} else {
				fields[name] = ""
			}
		}
		anns = append(anns, &TranscriptAnnotation{
			Transcript: fields["Feature"],
			Gene:       fields["SYMBOL"],
			Fields:     fields,
		})
	}

	return anns
}

// Header returns the VCF header lines.
func (p *Parser) Header() []string {
	return p.header
}

// SampleNames returns sample names from the #CHROM header line.
// Returns nil if no sample columns are present.
func (p *Parser) SampleNames() []string {
	return p.sampleNames
}

// InfoKeys returns the ##INFO IDs in header declaration order, CSQ excluded.
func (p *Parser) InfoKeys() []string {
	return p.infoKeys
}

// FormatKeys returns the ##FORMAT IDs in header declaration order.
func (p *Parser) FormatKeys() []string {
	return p.formatKeys
}

// CSQFields returns the VEP sub-field names declared in the CSQ annotation,
// or nil when the VCF carries no VEP annotations.
func (p *Parser) CSQFields() []string {
	return p.csqFields
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
