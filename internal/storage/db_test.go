package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"satlink/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "satlink.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestReplaceAndListRecords(t *testing.T) {
	db := openTestDB(t)

	first := []internal.Record{
		{Primary: "OLD SAT", Source: internal.SourceCelestrak},
	}
	if err := db.ReplaceRecords(first); err != nil {
		t.Fatal(err)
	}

	records := []internal.Record{
		{
			Primary: "INTELSAT 903",
			Source:  internal.SourceCelestrak,
			Payload: internal.Payload{TLE: &internal.TLE{Line1: "1 ...", Line2: "2 ...", NoradID: 27403}},
		},
		{
			Primary:   "INTELSAT 903",
			Secondary: "IS-903",
			RawName:   "Intelsat 903 (IS-903)",
			Source:    internal.SourceAltervista,
			Payload:   internal.Payload{FrequencyPlanURL: "http://example.test/is903.pdf"},
		},
		{
			Primary: "EUTELSAT HOT BIRD 13C",
			Source:  internal.SourceSatbeams,
			Payload: internal.Payload{
				Footprints: []internal.Footprint{{Title: "Ku Europe", URL: "http://example.test/a.jpg"}},
				Attributes: map[string]string{"Position": "13.0E"},
			},
		},
	}
	if err := db.ReplaceRecords(records); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len=%d", len(got))
	}
	if got[0].Payload.TLE == nil || got[0].Payload.TLE.NoradID != 27403 {
		t.Fatalf("tle payload lost: %+v", got[0].Payload)
	}
	if got[1].Secondary != "IS-903" || got[1].Source != internal.SourceAltervista {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
	if got[2].Payload.Attributes["Position"] != "13.0E" || len(got[2].Payload.Footprints) != 1 {
		t.Fatalf("unexpected third record: %+v", got[2])
	}

	if got[1].RawName != "Intelsat 903 (IS-903)" {
		t.Fatalf("raw name lost: %q", got[1].RawName)
	}

	counts, err := db.CountRecordsBySource()
	if err != nil {
		t.Fatal(err)
	}
	if counts["celestrak"] != 1 || counts["altervista"] != 1 || counts["satbeams"] != 1 {
		t.Fatalf("counts=%v", counts)
	}
}

func TestRefreshAndMetadata(t *testing.T) {
	db := openTestDB(t)

	latest, err := db.LatestRefresh()
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Fatalf("expected no refresh, got %+v", latest)
	}

	if err := db.InsertRefresh("abc", map[string]float64{"totalMs": 12}, map[string]int{"records": 3}); err != nil {
		t.Fatal(err)
	}
	latest, err = db.LatestRefresh()
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.TraceID != "abc" || latest.Counts["records"] != 3 {
		t.Fatalf("latest=%+v", latest)
	}

	missing, err := db.GetMetadata("refresh.last")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("expected nil metadata")
	}
	if err := db.SetMetadata("refresh.last", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("refresh.last", "2026-01-02T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	v, err := db.GetMetadata("refresh.last")
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || *v != "2026-01-02T00:00:00Z" {
		t.Fatalf("metadata=%v", v)
	}
}

func TestOpenAddsRawNameToOlderDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = conn.Exec(`
CREATE TABLE records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  primaryName TEXT NOT NULL,
  secondaryName TEXT NOT NULL DEFAULT '',
  payloadJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
INSERT INTO records (source, primaryName, payloadJson) VALUES ('celestrak', 'INTELSAT 903', '{}');
`)
	if err != nil {
		t.Fatal(err)
	}
	_ = conn.Close()

	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	got, err := db.ListRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Primary != "INTELSAT 903" || got[0].RawName != "" {
		t.Fatalf("records=%+v", got)
	}
	if err := db.ReplaceRecords([]internal.Record{{Primary: "INTELSAT 903", RawName: "Intelsat 903", Source: internal.SourceCelestrak}}); err != nil {
		t.Fatal(err)
	}
}
