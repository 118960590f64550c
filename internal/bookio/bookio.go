// Package bookio reads and writes book lists as JSON or CSV files.
package bookio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/listenupapp/bookcatalog/internal/domain"
	domainerrors "github.com/listenupapp/bookcatalog/internal/errors"
)

// Format is a file format for import and export.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// CSVHeader is the column order written by EncodeCSV and expected by Decode.
var CSVHeader = []string{"id", "title", "published_year", "genre", "author", "author_id"}

// ParseFormat parses an export format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", domainerrors.Validation("Invalid format. Use 'json' or 'csv'.")
}

// Filename returns the attachment name for an export in f.
func (f Format) Filename() string {
	return "books." + string(f)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Record is one book read from an import file. Fields are raw and unvalidated;
// ParseErr is set when the row itself could not be read.
type Record struct {
	Title         string
	PublishedYear int
	Genre         string
	Author        string
	Line          int
	ParseErr      error
}

// Fields converts the record to book fields with trimmed strings.
func (r Record) Fields() domain.BookFields {
	return domain.BookFields{
		Title:         strings.TrimSpace(r.Title),
		PublishedYear: r.PublishedYear,
		Genre:         domain.Genre(strings.TrimSpace(r.Genre)),
		AuthorName:    strings.TrimSpace(r.Author),
	}
}

// Decode reads records from r, choosing the format from filename's extension.
func Decode(filename string, r io.Reader) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return decodeJSON(r)
	case ".csv":
		return decodeCSV(r)
	}
	return nil, domainerrors.Validation("Only JSON and CSV files are supported")
}

// yearValue accepts a year as a JSON number or a numeric string.
type yearValue struct {
	year int
	err  error
}

func (y *yearValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		y.year, y.err = parseYear(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		y.err = fmt.Errorf("published_year: %w", err)
		return nil
	}
	y.year, y.err = parseYear(n.String())
	return nil
}

type jsonRecord struct {
	Title         *string    `json:"title"`
	PublishedYear *yearValue `json:"published_year"`
	Genre         *string    `json:"genre"`
	Author        *string    `json:"author"`
}

func decodeJSON(r io.Reader) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, domainerrors.Validationf("invalid JSON file: %v", err)
	}

	records := make([]Record, 0, len(raw))
	for i, msg := range raw {
		rec := Record{Line: i + 1}

		var jr jsonRecord
		if err := json.Unmarshal(msg, &jr); err != nil {
			rec.ParseErr = fmt.Errorf("entry %d: %w", i+1, err)
			records = append(records, rec)
			continue
		}

		var missing []string
		if jr.Title == nil {
			missing = append(missing, "title")
		} else {
			rec.Title = *jr.Title
		}
		if jr.PublishedYear == nil {
			missing = append(missing, "published_year")
		} else if jr.PublishedYear.err != nil {
			rec.ParseErr = jr.PublishedYear.err
		} else {
			rec.PublishedYear = jr.PublishedYear.year
		}
		if jr.Genre == nil {
			missing = append(missing, "genre")
		} else {
			rec.Genre = *jr.Genre
		}
		if jr.Author == nil {
			missing = append(missing, "author")
		} else {
			rec.Author = *jr.Author
		}
		if len(missing) > 0 {
			rec.ParseErr = fmt.Errorf("entry %d: missing %s", i+1, strings.Join(missing, ", "))
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, domainerrors.Validationf("invalid CSV file: %v", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range []string{"title", "published_year", "genre", "author"} {
		if _, ok := cols[required]; !ok {
			return nil, domainerrors.Validationf("CSV header is missing column %q", required)
		}
	}

	records := make([]Record, 0)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, domainerrors.Validationf("invalid CSV file: %v", err)
			}
			records = append(records, Record{Line: perr.StartLine, ParseErr: err})
			continue
		}
		line, _ := cr.FieldPos(0)
		rec := Record{Line: line}

		field := func(name string) (string, bool) {
			i := cols[name]
			if i >= len(row) {
				return "", false
			}
			return row[i], true
		}

		var missing []string
		var ok bool
		if rec.Title, ok = field("title"); !ok {
			missing = append(missing, "title")
		}
		if rec.Genre, ok = field("genre"); !ok {
			missing = append(missing, "genre")
		}
		if rec.Author, ok = field("author"); !ok {
			missing = append(missing, "author")
		}
		if year, ok := field("published_year"); !ok {
			missing = append(missing, "published_year")
		} else if rec.PublishedYear, err = parseYear(year); err != nil {
			rec.ParseErr = fmt.Errorf("line %d: %w", line, err)
		}
		if len(missing) > 0 {
			rec.ParseErr = fmt.Errorf("line %d: missing %s", line, strings.Join(missing, ", "))
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("published_year %q is not a whole number", s)
	}
	return year, nil
}

// exportBook is the wire shape of one exported book.
type exportBook struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	PublishedYear int    `json:"published_year"`
	Genre         string `json:"genre"`
	Author        string `json:"author"`
	AuthorID      int64  `json:"author_id"`
}

func toExport(b *domain.Book) exportBook {
	return exportBook{
		ID:            b.ID,
		Title:         b.Title,
		PublishedYear: b.PublishedYear,
		Genre:         string(b.Genre),
		Author:        b.AuthorName(),
		AuthorID:      b.AuthorID,
	}
}

// EncodeJSON writes {"books": [...]} to w.
func EncodeJSON(w io.Writer, books []*domain.Book) error {
	out := struct {
		Books []exportBook `json:"books"`
	}{Books: make([]exportBook, 0, len(books))}
	for _, b := range books {
		out.Books = append(out.Books, toExport(b))
	}
	return json.NewEncoder(w).Encode(out)
}

// EncodeCSV writes a header row followed by one row per book.
func EncodeCSV(w io.Writer, books []*domain.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, b := range books {
		e := toExport(b)
		if err := cw.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Title,
			strconv.Itoa(e.PublishedYear),
			e.Genre,
			e.Author,
			strconv.FormatInt(e.AuthorID, 10),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Encode writes books to w in format f.
func Encode(w io.Writer, f Format, books []*domain.Book) error {
	if f == FormatCSV {
		return EncodeCSV(w, books)
	}
	return EncodeJSON(w, books)
}
