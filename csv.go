package xlgrid

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var EncName = "utf-8"

func init() {
	EncName = os.Getenv("LANG")
	if i := strings.IndexByte(EncName, '.'); i >= 0 {
		EncName = strings.ToLower(EncName[i+1:])
	} else {
		EncName = ""
	}
	if EncName == "" {
		EncName = "utf-8"
	}
}

func GetEncoding(encName string) (encoding.Encoding, error) {
	encName = strings.ToLower(encName)
	if encName == "" || encName == "utf-8" || encName == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		err = fmt.Errorf("%q: %w", encName, err)
	}
	return enc, err
}

type csvReadCloser struct {
	*csv.Reader
	io.Closer
}

// OpenCsv opens the named file ("" or "-" means stdin) decoding encName,
// with the separator sniffed from the first KiB.
func OpenCsv(fn, encName string) (csvReadCloser, error) {
	var enc encoding.Encoding
	if encName != "" {
		var err error
		if enc, err = GetEncoding(encName); err != nil {
			return csvReadCloser{}, err
		}
	}
	fh := os.Stdin
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Open(fn); err != nil {
			return csvReadCloser{}, err
		}
	}
	r := io.ReadCloser(fh)
	if enc != nil {
		r = struct {
			io.Reader
			io.Closer
		}{enc.NewDecoder().Reader(r), r}
	}
	br := bufio.NewReaderSize(r, 1<<20)
	b, err := br.Peek(1024)
	if err != nil && len(b) == 0 {
		return csvReadCloser{}, err
	}
	sep := rune(',')
	for _, r := range string(b) {
		if r == '"' || r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}
		sep = r
		break
	}

	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	cr.Comma = sep
	return csvReadCloser{cr, r}, nil
}

// CSVSheet is the in-memory sheet of a CSV file, for Read and Write.
// When Raw is false (the default), Read converts the record strings back
// to numbers, booleans, error literals and ISO dates the way pandas'
// read_csv would.
type CSVSheet struct {
	Name    string
	Records [][]string
	Raw     bool
}

// OpenCSVSheet reads the whole named CSV file into a CSVSheet,
// with OpenCsv's charset and separator handling.
func OpenCSVSheet(fn, encName string) (*CSVSheet, error) {
	cr, err := OpenCsv(fn, encName)
	if err != nil {
		return nil, err
	}
	defer cr.Close()
	cr.FieldsPerRecord = -1
	sheet := CSVSheet{Name: strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn))}
	for {
		rec, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%q: %w", fn, err)
		}
		row := make([]string, len(rec))
		copy(row, rec)
		sheet.Records = append(sheet.Records, row)
	}
	return &sheet, nil
}

// WriteTo writes the records as CSV.
func (cs *CSVSheet) WriteTo(w io.Writer) (int64, error) {
	cw := csv.NewWriter(w)
	for _, rec := range cs.Records {
		if err := cw.Write(rec); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return 0, cw.Error()
}

var _ = (Writer)((*CSVWriter)(nil))

// CSVWriter is a Writer that renders one sheet as CSV. CSV has no sheet
// structure, so a second NewSheet reports an error, and no concurrent
// sheets either.
type CSVWriter struct {
	cw     *csv.Writer
	mu     sync.Mutex
	sheets int
}

// NewCSVWriter returns a CSVWriter writing to w, separating fields with
// sep (0 means comma).
func NewCSVWriter(w io.Writer, sep rune) *CSVWriter {
	cw := csv.NewWriter(w)
	if sep != 0 {
		cw.Comma = sep
	}
	return &CSVWriter{cw: cw}
}

func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.cw == nil {
		return nil
	}
	cw.cw.Flush()
	err := cw.cw.Error()
	cw.cw = nil
	return err
}

func (cw *CSVWriter) NewSheet(name string, cols []Column) (Sheet, error) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.cw == nil {
		return nil, fmt.Errorf("%q: writer is closed", name)
	}
	if cw.sheets++; cw.sheets > 1 {
		return nil, fmt.Errorf("%q: CSV cannot hold more than one sheet", name)
	}
	var hasHeader bool
	header := make([]string, len(cols))
	for i, c := range cols {
		if header[i] = c.Name; c.Name != "" {
			hasHeader = true
		}
	}
	if hasHeader {
		if err := cw.cw.Write(header); err != nil {
			return nil, err
		}
	}
	return &csvSheet{cw: cw}, nil
}

type csvSheet struct {
	cw  *CSVWriter
	rec []string
}

func (cs *csvSheet) Close() error {
	cs.cw.mu.Lock()
	defer cs.cw.mu.Unlock()
	if cs.cw.cw != nil {
		cs.cw.cw.Flush()
		return cs.cw.cw.Error()
	}
	return nil
}

func (cs *csvSheet) AppendRow(values ...any) error {
	cs.cw.mu.Lock()
	defer cs.cw.mu.Unlock()
	if cs.cw.cw == nil {
		return fmt.Errorf("writer is closed")
	}
	cs.rec = cs.rec[:0]
	for _, v := range values {
		if v == nil {
			cs.rec = append(cs.rec, "")
			continue
		}
		cs.rec = append(cs.rec, renderString(v))
	}
	return cs.cw.cw.Write(cs.rec)
}
