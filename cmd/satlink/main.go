package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"satlink/internal"
	"satlink/internal/catalog"
	"satlink/internal/config"
	"satlink/internal/export"
	"satlink/internal/listener"
	"satlink/internal/names"
	"satlink/internal/sources"
	"satlink/internal/storage"
)

const notAvailable = "Information not available."

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	canon, err := names.Load(cfg.RulesPath)
	must(err)

	cmd := os.Args[1]
	if cmd == "canon" {
		runCanon(canon, os.Args[2:])
		return
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	logger := log.New(os.Stderr, "satlink ", log.LstdFlags)
	store := catalog.NewStore(canon)

	switch cmd {
	case "refresh":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		only := fs.StringSlice("source", nil, "sources to refresh (celestrak,altervista,lyngsat,satbeams,plans)")
		publish := fs.Bool("publish", cfg.RefreshAutoPublish, "upload the result to the configured bucket")
		_ = fs.Parse(os.Args[2:])

		srcs := sources.Select(sources.FromConfig(cfg, sources.NewClient(cfg)), *only)
		svc := catalog.NewRefreshService(db, store, srcs, cfg, logger)
		if *publish {
			pub, err := export.NewPublisher(context.Background(), cfg)
			must(err)
			svc.WithPublisher(pub)
		}
		res, err := svc.Refresh(context.Background())
		must(err)
		for _, rep := range res.Sources {
			status := "ok"
			if rep.Err != nil {
				status = "failed: " + rep.Err.Error()
			}
			fmt.Printf("  %-10s %8s items  %s\n", rep.Source, humanize.Comma(int64(rep.Items)), status)
		}
		fmt.Printf("refresh done trace=%s records=%s names=%s exported=%d published=%d\n",
			res.TraceID, humanize.Comma(int64(res.Records)), humanize.Comma(int64(res.Keys)), len(res.Exported), len(res.Published))
	case "lookup":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		name := fs.StringP("name", "n", "", "satellite name as written anywhere")
		source := fs.String("source", "", "only records from this source")
		asJSON := fs.Bool("json", false, "print records as JSON")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) == "" && fs.NArg() > 0 {
			*name = strings.Join(fs.Args(), " ")
		}
		if strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--name is required"))
		}
		idx, err := catalog.Restore(db, store)
		must(err)
		runLookup(idx, *name, internal.SourceID(*source), *asJSON)
	case "export:csv":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		out := fs.String("out", "", "output csv path, or a directory with --by-source")
		bySource := fs.Bool("by-source", false, "write one <source>.csv per source")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			*out = cfg.OutputDir
			*bySource = true
		}
		records, err := db.ListRecords()
		must(err)
		if len(records) == 0 {
			must(fmt.Errorf("no records stored, run refresh first"))
		}
		if *bySource {
			paths, err := export.WriteSourceCSVs(*out, records)
			must(err)
			fmt.Printf("exported %s records to %d files in %s\n", humanize.Comma(int64(len(records))), len(paths), *out)
			return
		}
		must(export.WriteCSVFile(*out, export.RowsFromRecords(records)))
		fmt.Printf("exported %s records to %s\n", humanize.Comma(int64(len(records))), *out)
	case "export:xlsx":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		out := fs.String("out", filepath.Join(cfg.OutputDir, "satellites.xlsx"), "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		records, err := db.ListRecords()
		must(err)
		if len(records) == 0 {
			must(fmt.Errorf("no records stored, run refresh first"))
		}
		must(export.WriteXLSX(export.RowsFromRecords(records), *out))
		fmt.Printf("exported %s records to %s\n", humanize.Comma(int64(len(records))), *out)
	case "publish":
		fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
		prefix := fs.String("prefix", cfg.GCSPrefix, "object name prefix inside the bucket")
		_ = fs.Parse(os.Args[2:])
		cfg.GCSPrefix = *prefix
		records, err := db.ListRecords()
		must(err)
		pub, err := export.NewPublisher(context.Background(), cfg)
		must(err)
		uploaded, err := pub.PublishRecords(context.Background(), records)
		must(err)
		fmt.Printf("published %d objects to gs://%s\n", len(uploaded), cfg.GCSBucket)
	case "stats":
		counts, err := db.CountRecordsBySource()
		must(err)
		ids := make([]string, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Printf("  %-10s %8s records\n", id, humanize.Comma(int64(counts[id])))
		}
		if last, ok := catalog.LastRefresh(db); ok {
			fmt.Printf("last refresh %s (%s)\n", last.Format(time.RFC3339), humanize.Time(last))
		} else {
			fmt.Println("never refreshed")
		}
		latest, err := db.LatestRefresh()
		must(err)
		if latest != nil {
			fmt.Printf("  trace %s: %s records under %s names, %d carried, %d failed sources, %s total\n",
				latest.TraceID,
				humanize.Comma(int64(latest.Counts["records"])),
				humanize.Comma(int64(latest.Counts["keys"])),
				latest.Counts["carried"],
				latest.Counts["failedSources"],
				time.Duration(latest.Timings["totalMs"])*time.Millisecond)
		}
		fmt.Printf("rule table version %d\n", canon.Rules().Version)
	case "listen":
		_, err := catalog.Restore(db, store)
		must(err)
		srcs := sources.FromConfig(cfg, sources.NewClient(cfg))
		svc := catalog.NewRefreshService(db, store, srcs, cfg, logger)
		if cfg.RefreshAutoPublish {
			pub, err := export.NewPublisher(context.Background(), cfg)
			must(err)
			svc.WithPublisher(pub)
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		l := listener.NewService(db, svc, time.Duration(cfg.RefreshIntervalMin)*time.Minute, logger)
		must(l.Run(ctx))
	default:
		usage()
		os.Exit(1)
	}
}

func runCanon(canon *names.Canonicalizer, args []string) {
	if len(args) == 0 {
		must(fmt.Errorf("usage: satlink canon NAME..."))
	}
	for _, raw := range args {
		n, err := canon.CanonicalizeFullName(raw)
		if err != nil {
			fmt.Printf("%q\terror: %v\n", raw, err)
			continue
		}
		fmt.Printf("%q\t%s\t%s\n", raw, n.Primary, n.Secondary)
	}
}

func runLookup(idx *catalog.Index, name string, source internal.SourceID, asJSON bool) {
	records := idx.Lookup(name)
	if len(records) == 0 {
		for _, primary := range idx.Resolve(name) {
			records = append(records, idx.Get(primary)...)
		}
	}
	if source != "" {
		filtered := []internal.Record{}
		for _, r := range records {
			if r.Source == source {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		must(enc.Encode(records))
		return
	}
	if len(records) == 0 {
		fmt.Println(notAvailable)
		if suggestions := idx.Suggest(name, 5); len(suggestions) > 0 {
			fmt.Printf("did you mean: %s\n", strings.Join(suggestions, ", "))
		}
		return
	}
	for _, row := range export.RowsFromRecords(records) {
		fmt.Printf("%s", row.PrimaryName)
		if row.SecondaryName != "" {
			fmt.Printf(" (%s)", row.SecondaryName)
		}
		fmt.Printf("  [%s]\n", row.Source)
		if row.NoradID != nil {
			fmt.Printf("  NORAD %d\n  %s\n  %s\n", *row.NoradID, *row.TLELine1, *row.TLELine2)
		}
		if row.FrequencyPlanURL != nil {
			fmt.Printf("  plan: %s\n", *row.FrequencyPlanURL)
		}
		if row.DetailURL != nil {
			fmt.Printf("  detail: %s\n", *row.DetailURL)
		}
		if row.Footprints > 0 {
			fmt.Printf("  footprints: %d\n", row.Footprints)
		}
	}
}

func usage() {
	fmt.Println("usage: satlink <command>")
	fmt.Println("commands:")
	fmt.Println("  refresh [--source=celestrak,altervista,...] [--publish]")
	fmt.Println("  lookup --name=\"Intelsat 903\" [--source=celestrak] [--json]")
	fmt.Println("  canon NAME...")
	fmt.Println("  export:csv [--out=./out/satellites.csv] [--by-source]")
	fmt.Println("  export:xlsx [--out=./out/satellites.xlsx]")
	fmt.Println("  publish [--prefix=dashboard]")
	fmt.Println("  stats")
	fmt.Println("  listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
