package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shanehull/stockchat/internal/config"
	"github.com/shanehull/stockchat/internal/ingest"
	"github.com/shanehull/stockchat/internal/symbols"
)

var (
	ingestTickers    string
	ingestAll        bool
	ingestStatements bool

	ingestCmd = &cobra.Command{
		Use:   "ingest",
		Short: "Load financial statistics into the vector store",
		RunE:  runIngest,
	}
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestTickers, "tickers", "t", "", "Comma-separated tickers to ingest")
	ingestCmd.Flags().BoolVar(&ingestAll, "all", false, "Ingest every known ticker")
	ingestCmd.Flags().BoolVar(&ingestStatements, "statements", false, "Also ingest cash flow, income and balance sheet statements")
}

func parseTickers(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		t := strings.ToUpper(strings.TrimSpace(part))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// requirePersistentStore refuses to ingest into the in-memory store, which is lost on exit.
func requirePersistentStore(c *config.Config) error {
	if c.Weaviate.URL == "" {
		return fmt.Errorf("ingest requires a persistent vector store: set weaviate.url")
	}
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requirePersistentStore(cfg); err != nil {
		return err
	}

	var tickers []string
	switch {
	case ingestAll:
		tickers = symbols.Known()
	case ingestTickers != "":
		tickers = parseTickers(ingestTickers)
	default:
		return fmt.Errorf("either --tickers or --all is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Info().Int("tickers", len(tickers)).Bool("statements", ingestStatements).Msg("Starting ingestion")

	ing := ingest.New(a.iqx, a.gemini, a.store, ingest.Options{
		Workers:    cfg.Ingest.Workers,
		BatchSize:  cfg.Ingest.BatchSize,
		Retries:    cfg.Ingest.EmbedRetries,
		Dimensions: cfg.Gemini.Dimensions,
		Statements: ingestStatements,
		Limiter:    a.limiter,
	}, log)

	report := ing.Run(ctx, tickers)

	fmt.Printf("\nIngested %d/%d tickers, %d points in %s\n", report.Succeeded, report.Tickers, report.Points, report.Elapsed.Round(time.Millisecond))
	for t, msg := range report.Failed {
		fmt.Printf("  %s: %s\n", t, msg)
	}
	if report.Succeeded == 0 && report.Tickers > 0 {
		return fmt.Errorf("no tickers were ingested")
	}
	return nil
}
