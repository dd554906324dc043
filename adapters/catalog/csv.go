package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fellingdate/domain/dendro"
	apperrors "fellingdate/internal/errors"
)

// LoadCSV reads a user-supplied sapwood dataset from a delimited text file
// with exactly two logical columns: ring count and observed frequency.
// sep selects the field separator (',' or ';'); a header row is skipped
// when its first field is not numeric. The dataset name defaults to the
// file's base name without extension.
func LoadCSV(path string, sep rune) (dendro.SapwoodDataset, error) {
	if sep != ',' && sep != ';' {
		return dendro.SapwoodDataset{}, fmt.Errorf("unsupported field separator %q (use ',' or ';')", sep)
	}

	f, err := os.Open(path)
	if err != nil {
		return dendro.SapwoodDataset{}, apperrors.Wrapf(err, "open sapwood dataset %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return dendro.SapwoodDataset{}, apperrors.Wrapf(err, "parse sapwood dataset %s", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ds := dendro.SapwoodDataset{
		Name:      name,
		Region:    "user-supplied",
		Histogram: make(map[int]int),
	}

	for i, rec := range records {
		if len(rec) < 2 {
			return dendro.SapwoodDataset{}, fmt.Errorf("%s: row %d has %d fields, want 2", path, i+1, len(rec))
		}
		count, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			if i == 0 {
				// Header row.
				continue
			}
			return dendro.SapwoodDataset{}, fmt.Errorf("%s: row %d: ring count %q is not an integer", path, i+1, rec[0])
		}
		freq, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return dendro.SapwoodDataset{}, fmt.Errorf("%s: row %d: frequency %q is not an integer", path, i+1, rec[1])
		}
		if count < 0 || freq < 0 {
			return dendro.SapwoodDataset{}, fmt.Errorf("%s: row %d: negative value", path, i+1)
		}
		if freq > 0 {
			ds.Histogram[count] += freq
		}
	}

	if ds.SampleSize() == 0 {
		return dendro.SapwoodDataset{}, fmt.Errorf("%s: no observations", path)
	}
	return ds, nil
}
