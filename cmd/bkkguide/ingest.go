package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bkkguide/bkkguide/internal/corpus"
	"github.com/bkkguide/bkkguide/internal/ingest"
	"github.com/bkkguide/bkkguide/internal/retrieval"
	"github.com/bkkguide/bkkguide/internal/storage"
)

// smokeQuery is run after a successful ingest to confirm the index answers.
const (
	smokeQuery = "Buddhist temple Bangkok"
	smokeLimit = 3
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed the attraction corpus and write it to the index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigAndLogging()
		if err != nil {
			return err
		}
		if err := cfg.ValidateIngest(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		attractions, err := loadCorpus(cfg)
		if err != nil {
			return err
		}

		a, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runner := ingest.NewRunner(retrieval.NewIndexer(a.embedder, a.vectors),
			ingest.WithBatchSize(cfg.Ingest.BatchSize),
			ingest.WithDelay(cfg.Ingest.BatchDelay),
			ingest.WithRecorder(a.store, cfg.Index.Backend),
		)
		printStep("Ingesting %d attractions into %s index", len(attractions), cfg.Index.Backend)
		return runIngestion(ctx, runner, a.vectors, a.retriever, attractions)
	},
}

type corpusRunner interface {
	Run(ctx context.Context, attractions []corpus.Attraction) (ingest.Report, error)
}

type indexReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]retrieval.Record, error)
}

type smokeSearcher interface {
	Search(ctx context.Context, query string, k int, filter retrieval.Filter) ([]retrieval.ScoredDocument, error)
}

// runIngestion ingests attractions, reads the ids back from the index and
// runs the smoke query. Read-back and smoke query problems are reported but
// do not fail the ingest.
func runIngestion(ctx context.Context, runner corpusRunner, index indexReader, searcher smokeSearcher, attractions []corpus.Attraction) error {
	report, err := runner.Run(ctx, attractions)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printSuccess("Indexed %d documents in %d batches (%s, run %s)",
		report.Documents, report.Batches, report.Duration.Round(time.Millisecond), report.RunID)

	if missing, err := missingFromIndex(ctx, index, attractions); err != nil {
		printWarning("Could not read back indexed documents: %v", err)
	} else if len(missing) > 0 {
		printWarning("%d documents not found in the index after ingest: %s", len(missing), strings.Join(missing, ", "))
	}

	hits, err := searcher.Search(ctx, smokeQuery, smokeLimit, nil)
	if err != nil {
		printWarning("Test query %q failed: %v", smokeQuery, err)
		slog.Warn("smoke query failed", "query", smokeQuery, "error", err)
		return nil
	}
	if len(hits) == 0 {
		printWarning("Test query %q returned no documents", smokeQuery)
		return nil
	}
	printStep("Test query %q:", smokeQuery)
	for _, h := range hits {
		printStatus(h.Metadata.Title, "%.3f", h.Score)
	}
	return nil
}

// missingFromIndex returns the attraction ids that the index does not hold.
func missingFromIndex(ctx context.Context, index indexReader, attractions []corpus.Attraction) ([]string, error) {
	ids := make([]string, len(attractions))
	for i, a := range attractions {
		ids[i] = a.ID
	}
	records, err := index.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(records))
	for _, r := range records {
		found[r.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent ingestion runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigAndLogging()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		runs, err := store.ListIngestRuns(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("listing ingest runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(stderr, "No ingestion runs recorded.")
			return nil
		}
		printRuns(stdout, runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")
}

func printRuns(w io.Writer, runs []storage.IngestRun) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tBACKEND\tDOCS\tBATCHES\tDETAIL")
	for _, r := range runs {
		detail := ""
		if r.Status == storage.RunFailed {
			detail = fmt.Sprintf("batch %d: %s", r.FailedBatch, r.LastError)
		} else if !r.FinishedAt.IsZero() {
			detail = "took " + r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			shortID(r.ID), humanize.Time(r.StartedAt), r.Status, r.Backend, r.Documents, r.Batches, detail)
	}
	tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
