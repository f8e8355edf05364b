package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"satlink/internal"
	"satlink/internal/util"
)

// Sheet imports a table exported from one of the catalog sites. The header
// row must carry a satellite name column; a secondary-name column is
// folded back into the name in parentheses so the usual split recovers it.
type Sheet struct {
	id   internal.SourceID
	path string
}

func NewSheet(id internal.SourceID, path string) *Sheet {
	return &Sheet{id: id, path: path}
}

func (s *Sheet) ID() internal.SourceID { return s.id }

func (s *Sheet) Fetch(ctx context.Context) ([]internal.RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSXRows(s.path)
	case ".csv":
		rows, err = readCSVRows(s.path)
	default:
		return nil, fmt.Errorf("sheet %s: unsupported file type", s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", s.path, err)
	}
	return ParseSheetRows(s.id, rows)
}

// ParseSheetRows looks for the header row among the first three rows.
func ParseSheetRows(id internal.SourceID, rows [][]string) ([]internal.RawItem, error) {
	headerAt, nameIdx, secondaryIdx := -1, -1, -1
	var headers []string
	for i := 0; i < len(rows) && i < 3; i++ {
		cells := normalizeCells(rows[i])
		nameIdx, secondaryIdx = inferNameColumns(cells)
		if nameIdx >= 0 {
			headerAt, headers = i, cells
			break
		}
	}
	if headerAt < 0 {
		return nil, fmt.Errorf("no satellite name column in header")
	}

	out := []internal.RawItem{}
	for _, row := range rows[headerAt+1:] {
		name := pickCell(row, nameIdx)
		if strings.TrimSpace(name) == "" {
			continue
		}
		if secondary := strings.TrimSpace(pickCell(row, secondaryIdx)); secondary != "" && secondaryIdx != nameIdx {
			name = name + " (" + secondary + ")"
		}

		payload := internal.Payload{Attributes: map[string]string{}}
		for col, header := range headers {
			if col == nameIdx || col == secondaryIdx || header == "" {
				continue
			}
			value := strings.TrimSpace(pickCell(row, col))
			if value == "" {
				continue
			}
			lower := strings.ToLower(header)
			switch {
			case strings.HasPrefix(lower, "footprint"):
				payload.Footprints = append(payload.Footprints, internal.Footprint{Title: header, URL: value})
			case lower == "detail url" || lower == "url" || lower == "link":
				payload.DetailURL = value
			case strings.Contains(lower, "frequency plan"):
				payload.FrequencyPlanURL = value
			default:
				payload.Attributes[header] = value
			}
		}
		if len(payload.Attributes) == 0 {
			payload.Attributes = nil
		}
		out = append(out, internal.RawItem{Source: id, Name: name, Payload: payload})
	}
	return out, nil
}

func inferNameColumns(headers []string) (nameIdx, secondaryIdx int) {
	nameIdx, secondaryIdx = -1, -1
	for i, h := range headers {
		lower := strings.ToLower(h)
		if strings.Contains(lower, "secondary") {
			if secondaryIdx < 0 {
				secondaryIdx = i
			}
			continue
		}
		if nameIdx < 0 && (strings.Contains(lower, "satellite") || lower == "name") {
			nameIdx = i
		}
	}
	return
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(f.GetSheetName(0))
}

func readCSVRows(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, util.NormalizeSpaces(c))
	}
	return out
}

func pickCell(cells []string, idx int) string {
	if idx >= 0 && idx < len(cells) {
		return cells[idx]
	}
	return ""
}
