package lineage

import (
	"bufio"
	"io"
	"strings"
)

// DefaultCSVFilename is the suggested name for the tabular export.
const DefaultCSVFilename = "lineage.csv"

// WriteCSV writes the root-to-leaf table of res as CSV: a header row, then one
// row per leaf. Every field is double-quoted and embedded quotes are doubled.
// An empty result produces the header row only.
func WriteCSV(w io.Writer, res *Result) error {
	header, rows := Tabulate(ExtractPaths(res))
	return WriteRecords(w, header, rows)
}

// RenderCSV returns WriteCSV output as a string.
func RenderCSV(res *Result) string {
	var b strings.Builder
	_ = WriteCSV(&b, res)
	return b.String()
}

// WriteRecords writes header and rows with every field quoted.
//
// encoding/csv only quotes fields that need it; the export format quotes all
// of them.
func WriteRecords(w io.Writer, header []string, rows [][]string) error {
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRecord(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := w.WriteString(strings.ReplaceAll(f, `"`, `""`)); err != nil {
			return err
		}
		if err := w.WriteByte('"'); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}
