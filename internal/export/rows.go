// Package export writes linked records in the flat table layout the
// dashboard reads: one row per record, keyed by the primary and secondary
// satellite name columns.
package export

import (
	"satlink/internal"
	"satlink/internal/util"
)

const (
	ColPrimary   = "Primary Satellite Name"
	ColSecondary = "Secondary Satellite Name(s)"
)

var Headers = []string{
	ColPrimary,
	ColSecondary,
	"Source",
	"NORAD ID",
	"TLE-1",
	"TLE-2",
	"Frequency Plan URL",
	"Footprints",
	"Detail URL",
}

func RowsFromRecords(records []internal.Record) []internal.ExportRow {
	out := make([]internal.ExportRow, 0, len(records))
	for _, r := range records {
		row := internal.ExportRow{
			PrimaryName:      r.Primary,
			SecondaryName:    r.Secondary,
			Source:           string(r.Source),
			FrequencyPlanURL: util.OptString(r.Payload.FrequencyPlanURL),
			Footprints:       len(r.Payload.Footprints),
			DetailURL:        util.OptString(r.Payload.DetailURL),
		}
		if tle := r.Payload.TLE; tle != nil {
			row.TLELine1 = util.StringPtr(tle.Line1)
			row.TLELine2 = util.StringPtr(tle.Line2)
			if tle.NoradID > 0 {
				row.NoradID = util.IntPtr(tle.NoradID)
			}
		}
		out = append(out, row)
	}
	return out
}

func rowValues(row internal.ExportRow) []any {
	return []any{
		row.PrimaryName,
		row.SecondaryName,
		row.Source,
		derefInt(row.NoradID),
		derefString(row.TLELine1),
		derefString(row.TLELine2),
		derefString(row.FrequencyPlanURL),
		row.Footprints,
		derefString(row.DetailURL),
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
