package report

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes sweep rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing sweep csv: %w", err)
	}
	return nil
}
