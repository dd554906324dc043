package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fellingdate/domain/dendro"
	apperrors "fellingdate/internal/errors"
)

// ColumnMapping names the logical columns of a series table. FellingYear
// is optional and may be left empty.
type ColumnMapping struct {
	SeriesID    string
	Last        string
	NSapwood    string
	WaneyEdge   string
	FellingYear string
}

// DefaultMapping matches the column names used in the documentation
// examples.
func DefaultMapping() ColumnMapping {
	return ColumnMapping{
		SeriesID:    "series",
		Last:        "last",
		NSapwood:    "n_sapwood",
		WaneyEdge:   "waneyedge",
		FellingYear: "felling_year",
	}
}

// SeriesReader reads tables of series records from Excel and CSV files.
type SeriesReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	mapping  ColumnMapping
}

// NewSeriesReader creates a reader for the given file; the extension
// selects the format.
func NewSeriesReader(filePath string, mapping ColumnMapping) *SeriesReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &SeriesReader{filePath: filePath, fileType: fileType, mapping: mapping}
}

// Read parses the table into series records. Column names are matched
// case-insensitively against the mapping. Empty or NA cells for the
// sapwood count and last-ring year carry their documented missing-value
// semantics.
func (r *SeriesReader) Read() ([]dendro.SeriesRecord, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, apperrors.FileError(fmt.Sprintf("series table not found: %s", r.filePath))
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, apperrors.InvalidInput("series table needs a header row and at least one record")
	}

	cols, err := r.resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]dendro.SeriesRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := r.parseRecord(row, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *SeriesReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, apperrors.Wrapf(err, "open series table %s", r.filePath)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Wrapf(err, "parse series table %s", r.filePath)
	}
	return rows, nil
}

func (r *SeriesReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, apperrors.Wrapf(err, "open series table %s", r.filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.InvalidInput("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Wrapf(err, "read sheet %s", sheets[0])
	}
	return rows, nil
}

// columnIndexes holds resolved column positions; -1 means absent.
type columnIndexes struct {
	seriesID    int
	last        int
	nSapwood    int
	waneyEdge   int
	fellingYear int
}

func (r *SeriesReader) resolveColumns(header []string) (columnIndexes, error) {
	find := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}

	cols := columnIndexes{
		seriesID:    find(r.mapping.SeriesID),
		last:        find(r.mapping.Last),
		nSapwood:    find(r.mapping.NSapwood),
		waneyEdge:   find(r.mapping.WaneyEdge),
		fellingYear: -1,
	}
	if r.mapping.FellingYear != "" {
		cols.fellingYear = find(r.mapping.FellingYear)
	}
	if cols.seriesID < 0 {
		return cols, apperrors.InvalidInput(fmt.Sprintf("missing series-identifier column %q", r.mapping.SeriesID))
	}
	if cols.last < 0 {
		return cols, apperrors.InvalidInput(fmt.Sprintf("missing last-ring-year column %q", r.mapping.Last))
	}
	if cols.nSapwood < 0 {
		return cols, apperrors.InvalidInput(fmt.Sprintf("missing sapwood-count column %q", r.mapping.NSapwood))
	}
	return cols, nil
}

func (r *SeriesReader) parseRecord(row []string, cols columnIndexes) (dendro.SeriesRecord, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := dendro.SeriesRecord{ID: cell(cols.seriesID)}
	if rec.ID == "" {
		return rec, fmt.Errorf("empty series identifier")
	}

	if v := cell(cols.last); !isMissing(v) {
		last, err := strconv.Atoi(v)
		if err != nil {
			return rec, fmt.Errorf("last-ring year %q is not an integer", v)
		}
		rec.Last = last
	}

	if v := cell(cols.nSapwood); !isMissing(v) {
		n, err := strconv.Atoi(v)
		if err != nil {
			return rec, fmt.Errorf("sapwood count %q is not an integer", v)
		}
		if n < 0 {
			return rec, fmt.Errorf("sapwood count %d is negative", n)
		}
		rec.NSapwood = &n
	}

	if v := cell(cols.waneyEdge); !isMissing(v) {
		switch strings.ToLower(v) {
		case "true", "1", "yes", "y":
			rec.WaneyEdge = true
		case "false", "0", "no", "n":
			rec.WaneyEdge = false
		default:
			return rec, fmt.Errorf("waney-edge flag %q is not a boolean", v)
		}
	}

	if v := cell(cols.fellingYear); !isMissing(v) {
		year, err := strconv.Atoi(v)
		if err != nil {
			return rec, fmt.Errorf("felling year %q is not an integer", v)
		}
		rec.FellingYear = &year
	}

	return rec, nil
}

func isMissing(v string) bool {
	switch strings.ToUpper(v) {
	case "", "NA", "N/A", "NULL":
		return true
	}
	return false
}
