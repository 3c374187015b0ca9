package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/wadjakorntonsri/cv-analytics/pkg/adapters/repository/sqlrepo"
	"github.com/wadjakorntonsri/cv-analytics/pkg/config"
	"github.com/wadjakorntonsri/cv-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/cv-analytics/pkg/core/useragent"
	"github.com/wadjakorntonsri/cv-analytics/pkg/logging"
)

const usage = "expected 'init', 'export', 'import' or 'stats' subcommands"

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "JSON file produced by export")
	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	ctx := context.Background()
	repo, err := sqlrepo.NewSQLRepository(ctx, sqlrepo.Options{
		Driver: cfg.DBDriver,
		DSN:    cfg.DSN(),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to db")
	}
	defer repo.Close()

	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		if err := repo.InitSchema(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Schema init failed")
		}
		fmt.Println("schema ready")
	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := exportVisits(ctx, repo, os.Stdout); err != nil {
			logging.Fatal().Err(err).Msg("Export failed")
		}
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		file, err := os.Open(*importFile)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open file")
		}
		defer file.Close()

		count, err := importVisits(ctx, repo, file)
		if err != nil {
			logging.Fatal().Err(err).Int("imported", count).Msg("Import failed")
		}
		logging.Info().Int("imported", count).Msg("Import finished")
	case "stats":
		statsCmd.Parse(os.Args[2:])
		summary, err := repo.SummaryView(ctx)
		if err != nil {
			logging.Fatal().Err(err).Msg("Stats failed")
		}
		if err := writeIndented(os.Stdout, summary); err != nil {
			logging.Fatal().Err(err).Msg("Encode failed")
		}
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func exportVisits(ctx context.Context, repo *sqlrepo.SQLRepository, w io.Writer) error {
	visits, err := repo.Dump(ctx)
	if err != nil {
		return err
	}
	return writeIndented(w, visits)
}

func writeIndented(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// visitInserter is the part of the store import needs
type visitInserter interface {
	InsertVisit(ctx context.Context, visit *domain.Visit) error
}

// importVisits appends every visit of an export. Ids are reassigned by the
// store; rows missing classifier fields are classified from the user agent.
// Rows that fail to insert are logged and skipped.
func importVisits(ctx context.Context, repo visitInserter, r io.Reader) (int, error) {
	var visits []domain.Visit
	if err := json.NewDecoder(r).Decode(&visits); err != nil {
		return 0, fmt.Errorf("decode export: %w", err)
	}

	count := 0
	for i := range visits {
		v := &visits[i]
		v.ID = 0
		reclassify(v)
		if err := repo.InsertVisit(ctx, v); err != nil {
			logging.Warn().Err(err).Str("ip_address", v.IPAddress).Msg("Failed to import visit")
			continue
		}
		count++
	}
	return count, nil
}

func reclassify(v *domain.Visit) {
	if v.Browser != "" && v.OS != "" && v.DeviceType != "" {
		return
	}
	ua := domain.Unknown
	if v.UserAgent != nil && *v.UserAgent != "" {
		ua = *v.UserAgent
	}
	info := useragent.Classify(ua)
	if v.Browser == "" {
		v.Browser = info.Browser
	}
	if v.OS == "" {
		v.OS = info.OS
	}
	if v.DeviceType == "" {
		v.DeviceType = info.DeviceType
	}
}
