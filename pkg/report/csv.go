package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WriteCSV writes the object rows as CSV: one line per object with its
// solved phase and bit range.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "size", "period", "phase", "start", "end", "group"}); err != nil {
		return err
	}
	for _, row := range r.Objects() {
		record := []string{
			row.Name,
			strconv.Itoa(row.Size),
			strconv.Itoa(row.Period),
			strconv.Itoa(row.Phase),
			strconv.Itoa(row.Start),
			strconv.Itoa(row.End),
			row.Group,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the CSV report to a file at path.
func (r *Report) ExportCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return r.WriteCSV(f)
}
