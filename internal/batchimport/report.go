package batchimport

import (
	"encoding/csv"
	"fmt"
	"os"
)

// WriteFailureReport writes the failure entries as a CSV the owner can
// open in Excel. The UTF-8 BOM keeps Excel from guessing a legacy
// encoding for the Chinese headers. No file is written for a clean run.
func WriteFailureReport(path string, failures []FailureEntry) error {
	if len(failures) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"書名", "原始網址", "失敗原因"}); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	for _, e := range failures {
		if err := w.Write([]string{e.Title, e.URL, e.Reason}); err != nil {
			return fmt.Errorf("write report %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return f.Close()
}
