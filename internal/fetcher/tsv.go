package fetcher

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
)

// ReadTSV reads a tab-delimited file and returns all records, including the
// header row. Records may have a variable number of fields; short rows are
// returned as-is rather than rejected.
func ReadTSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "tsv: open file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "tsv: read %s", path)
	}
	return records, nil
}
