package sources

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"satlink/internal"
)

// PlanArchive serves a local mirror of frequency-plan PDFs. Each file is
// named after the satellite it describes, e.g. "INTELSAT 903 (IS-903).pdf".
type PlanArchive struct {
	dir string
}

func NewPlanArchive(dir string) *PlanArchive {
	return &PlanArchive{dir: dir}
}

func (p *PlanArchive) ID() internal.SourceID { return internal.SourcePlans }

func (p *PlanArchive) Fetch(ctx context.Context) ([]internal.RawItem, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]internal.RawItem, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		satellite := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.TrimSpace(satellite) == "" {
			continue
		}
		path := filepath.Join(p.dir, name)
		out = append(out, internal.RawItem{
			Source: internal.SourcePlans,
			Name:   satellite,
			Payload: internal.Payload{
				FrequencyPlanURL: "file://" + filepath.ToSlash(path),
				PlanPages:        pageCount(path),
			},
		})
	}
	return out, nil
}

// pageCount is 0 for files the PDF reader cannot open.
func pageCount(path string) int {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	return r.NumPage()
}
