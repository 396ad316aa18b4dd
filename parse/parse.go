package parse

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"
)

// Returned (wrapped) when a table can't be opened or read. Callers
// treat it as a warning: the table simply contributes no records.
var ErrTableUnavailable = errors.New("table unavailable")

// A set of named GTFS tables.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

type fsSource struct {
	fsys fs.FS
}

// Wraps an fs.FS (e.g. a testing/fstest.MapFS) as a Source.
func FS(fsys fs.FS) Source {
	return fsSource{fsys}
}

func (s fsSource) Open(name string) (io.ReadCloser, error) {
	return s.fsys.Open(name)
}

// Tables stored as files in a directory.
func Dir(path string) Source {
	return fsSource{os.DirFS(path)}
}

type zipSource struct {
	files map[string]*zip.File
}

// Tables stored in a zip archive.
func Zip(buf []byte) (Source, error) {
	r, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("unzipping: %w", err)
	}

	files := map[string]*zip.File{}
	for _, f := range r.File {
		// There should not be any subdirectories. But, some
		// agencies don't care.
		if f.FileInfo().IsDir() {
			continue
		}
		path := strings.Split(f.Name, "/")
		files[path[len(path)-1]] = f
	}

	return zipSource{files}, nil
}

func (s zipSource) Open(name string) (io.ReadCloser, error) {
	f, found := s.files[name]
	if !found {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return f.Open()
}

// Opens path as a directory of tables or, if it's a file, as a zip
// archive.
func Open(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening feed: %w", err)
	}
	if info.IsDir() {
		return Dir(path), nil
	}

	buf, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}
	return Zip(buf)
}

// The CSV reader used for header mapped tables (agency.txt and the
// stop_times extraction). Strips unicode BOMs, tolerates sloppy quotes
// and rows of varying length.
func NewCSVReader(in io.Reader) gocsv.CSVReader {
	r := csv.NewReader(bom.NewReader(in))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

const maxLineSize = 1 << 20

type lineReader struct {
	scanner *bufio.Scanner
}

// A reader for positional tables. Each line is one record, split on
// every comma with empty trailing fields kept. Quotes get no special
// treatment, so a malformed line never affects the lines after it.
func NewLineReader(in io.Reader) gocsv.CSVReader {
	scanner := bufio.NewScanner(bom.NewReader(in))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineReader{scanner: scanner}
}

func (r *lineReader) Read() ([]string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	line := strings.TrimSuffix(r.scanner.Text(), "\r")
	return strings.Split(line, ","), nil
}

func (r *lineReader) ReadAll() ([][]string, error) {
	records := [][]string{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

// Reads the named table, calling fn for every line holding at least
// minFields fields. The header line is skipped and shorter lines are
// dropped.
func ReadTable(src Source, name string, minFields int, fn func(record []string)) error {
	rc, err := src.Open(name)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrTableUnavailable, name, err)
	}
	defer rc.Close()

	r := NewLineReader(rc)

	_, err = r.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s header: %w", ErrTableUnavailable, name, err)
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: reading %s: %w", ErrTableUnavailable, name, err)
		}
		if len(record) < minFields {
			continue
		}
		fn(record)
	}

	return nil
}
