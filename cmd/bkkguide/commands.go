package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/bkkguide/bkkguide/internal/api"
	"github.com/bkkguide/bkkguide/internal/config"
	"github.com/bkkguide/bkkguide/internal/corpus"
	"github.com/bkkguide/bkkguide/internal/embedding"
	"github.com/bkkguide/bkkguide/internal/llm"
	"github.com/bkkguide/bkkguide/internal/retrieval"
)

// --- search ---

var (
	searchLimit    int
	searchCategory string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a similarity search against the index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigAndLogging()
		if err != nil {
			return err
		}
		if err := cfg.ValidateSearch(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		a, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var filter retrieval.Filter
		if searchCategory != "" {
			filter = retrieval.Filter{"category": searchCategory}
		}
		hits, err := a.retriever.Search(cmd.Context(), strings.Join(args, " "), searchLimit, filter)
		if err != nil {
			return err
		}
		if searchJSON {
			return writeJSONOut(stdout, hits)
		}
		if len(hits) == 0 {
			printWarning("No matching attractions.")
			return nil
		}
		printHits(stdout, hits)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "only return attractions in this category")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
}

func printHits(w io.Writer, hits []retrieval.ScoredDocument) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tTITLE\tCATEGORY\tRATING\tPRICE")
	for i, h := range hits {
		m := h.Metadata
		fmt.Fprintf(tw, "%d\t%.3f\t%s\t%s\t%.1f\t%s\n", i+1, h.Score, m.Title, m.Category, m.Rating, m.PriceRange)
	}
	tw.Flush()
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the running guide server a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return ask(cmd.Context(), newAPIClient(cfg), strings.Join(args, " "))
	},
}

func ask(ctx context.Context, client *apiClient, message string) error {
	resp, err := client.post(ctx, "/api/chat", api.ChatRequest{Message: message})
	if err != nil {
		return err
	}
	var out api.ChatResponse
	if err := decodeJSON(resp, &out); err != nil {
		return err
	}

	printWrapped(stdout, out.Message, 80)
	if len(out.Recommendations) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, colorize(colorBold, "Recommended:"))
		for _, r := range out.Recommendations {
			fmt.Fprintf(stdout, "  • %s (%s, %.1f★, %s)\n", r.Title, r.Category, r.Rating, r.PriceRange)
			fmt.Fprintf(stdout, "    %s\n", r.Location.Address)
		}
	}
	return nil
}

// --- corpus ---

var corpusFormat string

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Validate and print the attraction corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		attractions, err := loadCorpus(cfg)
		if err != nil {
			return err
		}
		if err := corpus.Validate(attractions); err != nil {
			return fmt.Errorf("invalid corpus: %w", err)
		}
		return printCorpus(stdout, attractions, corpusFormat)
	},
}

func init() {
	corpusCmd.Flags().StringVarP(&corpusFormat, "format", "o", "table", "output format: table, json, or yaml")
}

// printCorpus writes attractions in the given format. The yaml format is
// accepted back by corpus.file.
func printCorpus(w io.Writer, attractions []corpus.Attraction, format string) error {
	switch format {
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tRATING\tPRICE\tTAGS")
		for _, a := range attractions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\t%s\n", a.ID, a.Title, a.Category, a.Rating, a.PriceRange, strings.Join(a.Tags, ","))
		}
		return tw.Flush()
	case "json":
		return writeJSONOut(w, attractions)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{"attractions": attractions}); err != nil {
			return fmt.Errorf("encoding corpus: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want table, json, or yaml)", format)
	}
}

func writeJSONOut(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server, model and index status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigAndLogging()
		if err != nil {
			printError("config error: %v", err)
			return nil
		}
		showStatus(cmd.Context(), cfg)
		return nil
	},
}

// showStatus prints what it can; individual failures are reported inline.
// The upstream probes are independent and run concurrently.
func showStatus(ctx context.Context, cfg config.Config) {
	indexErr := cfg.ValidateSearch()
	var a *app
	if indexErr == nil {
		var err error
		if a, err = openApp(cfg); err != nil {
			indexErr = err
		} else {
			defer a.Close()
		}
	}

	var serverUp bool
	var chatState, embedState string
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		serverUp = newAPIClient(cfg).healthy(gCtx)
		return nil
	})
	if cfg.Chat.APIKey != "" {
		g.Go(func() error {
			chatState = chatAPIStatus(gCtx, newChatModel(cfg))
			return nil
		})
	}
	if a != nil {
		g.Go(func() error {
			embedState = embeddingStatus(gCtx, cfg, a.provider)
			return nil
		})
	}
	g.Wait()

	if serverUp {
		printStatus("Server", "running on port %d", cfg.Server.Port)
	} else {
		printStatus("Server", "stopped")
	}
	printStatus("Chat model", "%s", cfg.Chat.Model)
	if cfg.Chat.APIKey == "" {
		printStatus("Chat API", "no API key configured")
	} else {
		printStatus("Chat API", "%s", chatState)
	}

	if a == nil {
		printStatus("Index", "unavailable: %v", indexErr)
		printStatus("Data dir", "%s", cfg.Storage.DataDir)
		return
	}
	printStatus("Embeddings", "%s", embedState)
	if n, err := a.retriever.Count(ctx); err != nil {
		printStatus("Index", "%s (error: %v)", cfg.Index.Backend, err)
	} else {
		printStatus("Index", "%s, %d documents", cfg.Index.Backend, n)
	}
	if versions, err := a.store.AppliedMigrations(); err == nil && len(versions) > 0 {
		printStatus("Schema", "migration %d", versions[len(versions)-1])
	}
	if runs, err := a.store.ListIngestRuns(ctx, 1); err == nil && len(runs) > 0 {
		r := runs[0]
		printStatus("Last ingest", "%s %s (%d documents)", r.Status, humanize.Time(r.StartedAt), r.Documents)
	} else {
		printStatus("Last ingest", "never")
	}
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
}

type modelLister interface {
	Model() string
	ListModels(ctx context.Context) ([]llm.Model, error)
}

func chatAPIStatus(ctx context.Context, m modelLister) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := m.ListModels(ctx)
	if err != nil {
		return fmt.Sprintf("unreachable (%s: %v)", llm.Classify(err), err)
	}
	for _, model := range models {
		if model.ID == m.Model() {
			return fmt.Sprintf("reachable, %s available", m.Model())
		}
	}
	return fmt.Sprintf("reachable, but %s is not listed", m.Model())
}

func embeddingStatus(ctx context.Context, cfg config.Config, p embedding.Provider) string {
	switch c := p.(type) {
	case *embedding.Ollama:
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if !c.IsRunning(ctx) {
			return fmt.Sprintf("ollama %s (not running)", c.Model())
		}
		return fmt.Sprintf("ollama %s, %d dims", c.Model(), cfg.Embedding.Dimensions)
	case *embedding.HuggingFace:
		return fmt.Sprintf("huggingface %s, %d dims", c.Model(), cfg.Embedding.Dimensions)
	default:
		return cfg.Embedding.Provider
	}
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		printConfig(stdout, cfg)
		return nil
	},
}

func printConfig(w io.Writer, cfg config.Config) {
	fmt.Fprintf(w, "# %s\n", config.ConfigFilePath())
	for _, k := range config.ShowAll(cfg) {
		fmt.Fprintf(w, "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
	}
	for _, k := range config.Secrets(cfg) {
		fmt.Fprintf(w, "  %s %s  [env: %s]\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
	}
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.SetKey(key, value); err != nil {
			return err
		}
		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable configuration keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range config.ValidKeys() {
			fmt.Fprintln(stdout, k)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
}
