package internal

type SourceID string

const (
	SourceCelestrak  SourceID = "celestrak"
	SourceAltervista SourceID = "altervista"
	SourceLyngsat    SourceID = "lyngsat"
	SourceSatbeams   SourceID = "satbeams"
	SourcePlans      SourceID = "plans"
)

// RawItem is one satellite entry exactly as a source produced it. Name is
// the unprocessed text from the page; the linker canonicalizes it.
type RawItem struct {
	Source  SourceID
	Name    string
	Payload Payload
}

type TLE struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	NoradID int    `json:"noradId,omitempty"`
}

type Footprint struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Payload carries the source-specific data of a record. Only the fields
// relevant to the contributing source are set.
type Payload struct {
	TLE              *TLE              `json:"tle,omitempty"`
	FrequencyPlanURL string            `json:"frequencyPlanUrl,omitempty"`
	PlanPages        int               `json:"planPages,omitempty"`
	Footprints       []Footprint       `json:"footprints,omitempty"`
	DetailURL        string            `json:"detailUrl,omitempty"`
	Attributes       map[string]string `json:"attributes,omitempty"`
}

// Record is one linked row: canonical names plus the contributing source's
// payload. RawName keeps the name as scraped so the record can be re-keyed
// when the rule table changes.
type Record struct {
	Primary   string
	Secondary string
	RawName   string
	Source    SourceID
	Payload   Payload
}

type ExportRow struct {
	PrimaryName      string
	SecondaryName    string
	Source           string
	NoradID          *int
	TLELine1         *string
	TLELine2         *string
	FrequencyPlanURL *string
	Footprints       int
	DetailURL        *string
}
