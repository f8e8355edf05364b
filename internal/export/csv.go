package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"satlink/internal"
)

func WriteCSV(w io.Writer, rows []internal.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return err
	}
	for _, row := range rows {
		values := rowValues(row)
		rec := make([]string, len(values))
		for i, v := range values {
			rec[i] = fmt.Sprint(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func CSVBytes(rows []internal.ExportRow) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := WriteCSV(buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteCSVFile(outputPath string, rows []internal.ExportRow) error {
	blob, err := CSVBytes(rows)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, blob, 0o644)
}

// WriteSourceCSVs writes one <source>.csv per contributing source into dir
// and returns the written paths in source order.
func WriteSourceCSVs(dir string, records []internal.Record) ([]string, error) {
	bySource := map[internal.SourceID][]internal.Record{}
	for _, r := range records {
		bySource[r.Source] = append(bySource[r.Source], r)
	}
	sources := make([]string, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, string(s))
	}
	sort.Strings(sources)

	paths := make([]string, 0, len(sources))
	for _, s := range sources {
		path := filepath.Join(dir, s+".csv")
		if err := WriteCSVFile(path, RowsFromRecords(bySource[internal.SourceID(s)])); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
