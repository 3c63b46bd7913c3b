package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"namethatpage-backend/application/queries"
	querybus "namethatpage-backend/application/queries/bus"
	"namethatpage-backend/infrastructure/config"
	"namethatpage-backend/infrastructure/di"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	centerIsBlank bool
	centerIsBlue  bool

	rootCmd = &cobra.Command{
		Use:           "namethatpage",
		Short:         "Query Wikipedia clickstream puzzles from the command line",
		SilenceUsage: true,
	}

	articleCmd = &cobra.Command{
		Use:   "article [title]",
		Short: "Select an article and print its clickstream record; random when no title is given",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runArticle,
	}

	graphCmd = &cobra.Command{
		Use:   "graph [title]",
		Short: "Select an article and print its pruned navigation graph",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGraph,
	}

	corpusCmd = &cobra.Command{
		Use:   "corpus",
		Short: "Print the active seed corpus",
		Args:  cobra.NoArgs,
		RunE:  runCorpus,
	}
)

func init() {
	graphCmd.Flags().BoolVar(&centerIsBlank, "blank", false, "obscure the center label")
	graphCmd.Flags().BoolVar(&centerIsBlue, "blue", false, "highlight the center node")

	rootCmd.AddCommand(articleCmd, graphCmd, corpusCmd)
}

// withContainer wires the application for a single command run
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, container *di.Container) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// one-shot runs have nothing to scrape and nothing to reload
	cfg.EnableMetrics = false
	cfg.WatchSeedCorpus = false

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer cleanup()
	defer func() { _ = container.Logger.Sync() }()

	return fn(ctx, container)
}

func runArticle(cmd *cobra.Command, args []string) error {
	return withContainer(cmd, func(ctx context.Context, container *di.Container) error {
		record, err := querybus.Ask[*queries.SelectArticleResult](ctx, container.QueryBus, queries.SelectArticleQuery{
			Title: firstArg(args),
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), record)
	})
}

func runGraph(cmd *cobra.Command, args []string) error {
	return withContainer(cmd, func(ctx context.Context, container *di.Container) error {
		result, err := querybus.Ask[*queries.ArticleGraphResult](ctx, container.QueryBus, queries.ArticleGraphQuery{
			Title:         firstArg(args),
			CenterIsBlank: centerIsBlank,
			CenterIsBlue:  centerIsBlue,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), result)
	})
}

func runCorpus(cmd *cobra.Command, args []string) error {
	return withContainer(cmd, func(ctx context.Context, container *di.Container) error {
		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent(2)
		if err := encoder.Encode(container.SeedCorpus.SeedCorpus()); err != nil {
			return err
		}
		return encoder.Close()
	})
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
