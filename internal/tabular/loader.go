package tabular

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when a file cannot be recognized as any
// supported tabular format.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format identifies a source file format. FormatAuto lets the loader choose
// from the file extension with a content-based fallback.
type Format string

const (
	FormatAuto      Format = ""
	FormatCSV       Format = "csv"
	FormatTSV       Format = "tsv"
	FormatJSON      Format = "json"
	FormatXLSX      Format = "xlsx"
	FormatDelimited Format = "delimited" // separator probed from content
)

// separatorPriority is the fixed probe order for delimited text.
// The first separator that yields more than one column wins.
var separatorPriority = []rune{',', '\t', ';', '|'}

// Loader reads source files into RecordSets.
type Loader struct {
	log *logrus.Logger
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Loader{log: log}
}

// Load reads the file at path into a RecordSet. With FormatAuto the format
// is chosen from the extension; unknown extensions fall back to probing the
// first line against the separator priority list.
func (l *Loader) Load(path string, hint Format) (*RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	format := hint
	if format == FormatAuto {
		format = formatFromExtension(path)
	}

	rs, err := l.LoadReader(f, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	l.log.WithFields(logrus.Fields{
		"file":    path,
		"format":  string(format),
		"columns": len(rs.Columns),
		"rows":    len(rs.Rows),
	}).Info("Loaded record set")

	return rs, nil
}

// LoadReader reads a byte stream into a RecordSet. FormatAuto and
// FormatDelimited probe the first line for a separator.
func (l *Loader) LoadReader(r io.Reader, format Format) (*RecordSet, error) {
	switch format {
	case FormatCSV:
		return readDelimited(r, ',')
	case FormatTSV:
		return readDelimited(r, '\t')
	case FormatJSON:
		return readJSON(r)
	case FormatXLSX:
		return readXLSX(r)
	case FormatAuto, FormatDelimited:
		return probeDelimited(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
}

func formatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".tsv", ".tab":
		return FormatTSV
	case ".json":
		return FormatJSON
	case ".xlsx":
		return FormatXLSX
	default:
		// Unknown extensions go through the content probe.
		return FormatDelimited
	}
}

// probeDelimited buffers the header line, tries each separator in priority
// order, and parses the stream with the first one that splits the header
// into more than one column.
func probeDelimited(r io.Reader) (*RecordSet, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	header, err := br.Peek(64 * 1024)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read header: %w", err)
	}
	firstLine := string(header)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	if strings.TrimSpace(firstLine) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
	}

	for _, sep := range separatorPriority {
		cr := csv.NewReader(strings.NewReader(firstLine))
		cr.Comma = sep
		cr.LazyQuotes = true
		fields, err := cr.Read()
		if err == nil && len(fields) > 1 {
			return readDelimited(br, sep)
		}
	}

	return nil, fmt.Errorf("%w: no separator yields more than one column", ErrUnsupportedFormat)
}

// readDelimited streams rows through encoding/csv, one record at a time.
// The file is never materialized as a whole in memory.
func readDelimited(r io.Reader, sep rune) (*RecordSet, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	// TrimLeadingSpace would also eat the separator itself when the
	// separator is whitespace, collapsing empty TSV cells into their
	// right-hand neighbour. Cells are trimmed individually below instead.
	cr.TrimLeadingSpace = !unicode.IsSpace(sep)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: only one column detected", ErrUnsupportedFormat)
	}

	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = strings.TrimSpace(c)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := make(Row, len(columns))
		for i, value := range record {
			if i >= len(columns) {
				break // extra trailing cells have no column
			}
			value = strings.TrimSpace(value)
			if value != "" {
				row[columns[i]] = value
			}
		}
		rows = append(rows, row)
	}

	return NewRecordSet(columns, rows), nil
}

// readXLSX loads the first sheet of a spreadsheet. The first row is the
// header; later rows may be ragged, and cells past the header width are
// dropped like extra delimited cells.
func readXLSX(r io.Reader) (*RecordSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid spreadsheet: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet has no sheets", ErrUnsupportedFormat)
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
	}

	columns := make([]string, len(all[0]))
	for i, c := range all[0] {
		columns[i] = strings.TrimSpace(c)
	}

	rows := make([]Row, 0, len(all)-1)
	for _, record := range all[1:] {
		row := make(Row, len(columns))
		for i, value := range record {
			if i >= len(columns) {
				break
			}
			value = strings.TrimSpace(value)
			if value != "" {
				row[columns[i]] = value
			}
		}
		rows = append(rows, row)
	}

	return NewRecordSet(columns, rows), nil
}

// readJSON accepts either a top-level array of flat objects or a single
// object, which is treated as a one-row array. JSON objects carry no key
// order, so columns are the sorted union of keys across all records.
func readJSON(r io.Reader) (*RecordSet, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrUnsupportedFormat, err)
	}

	var objects []map[string]any
	switch v := raw.(type) {
	case []any:
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: array element %d is not an object", ErrUnsupportedFormat, i)
			}
			objects = append(objects, obj)
		}
	case map[string]any:
		objects = []map[string]any{v}
	default:
		return nil, fmt.Errorf("%w: JSON must be an array of objects or a single object", ErrUnsupportedFormat)
	}

	seen := make(map[string]bool)
	var columns []string
	for _, obj := range objects {
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	rows := make([]Row, 0, len(objects))
	for _, obj := range objects {
		row := make(Row, len(obj))
		for k, v := range obj {
			s := scalarString(v)
			if s != "" {
				row[k] = s
			}
		}
		rows = append(rows, row)
	}

	return NewRecordSet(columns, rows), nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
