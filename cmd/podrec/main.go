// Copyright 2025 Podrec Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/podrec/podrec"
	"github.com/podrec/podrec/ai"
	"github.com/podrec/podrec/classify"
	"github.com/podrec/podrec/ingest"
	"github.com/podrec/podrec/recommend"
	"github.com/podrec/podrec/source"
	"github.com/podrec/podrec/tags"
	"github.com/urfave/cli/v2"
)

func main() {
	// Local overrides for embedding host/model etc.; absence is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "podrec",
		Usage: "Podcast transcript ingestion and recommendation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Run one ingestion cycle over the transcript source",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Path to the cleaned transcript directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"PODREC_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
						EnvVars:  []string{"PODREC_EMBEDDING_MODEL"},
					},
					&cli.StringFlag{
						Name:  "tags-vocab",
						Usage: "Path to the tag vocabulary YAML (tags disabled when omitted)",
					},
					&cli.IntFlag{
						Name:  "collections-per-cycle",
						Usage: "Number of source collections one cycle covers",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for concurrent collections",
						Value: 2,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.Float64Flag{
						Name:  "embedding-rps",
						Usage: "Embedding request rate limit (0 disables)",
					},
				},
			},
			{
				Name:   "query",
				Usage:  "Recommend transcript chunks for a query",
				Action: queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"PODREC_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
						EnvVars:  []string{"PODREC_EMBEDDING_MODEL"},
					},
					&cli.StringFlag{
						Name:  "categories",
						Usage: "Path to the category lexicon YAML (category filter disabled when omitted)",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of chunks to return",
						Value:   5,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Confidence threshold for the fallback decision",
						Value: recommend.DefaultThreshold,
					},
					&cli.BoolFlag{
						Name:  "no-fallback",
						Usage: "Disable the fallback decision",
					},
				},
			},
			{
				Name:   "journal",
				Usage:  "Print the exception journal",
				Action: journalCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries to print (0 for all)",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print store and progress statistics",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithRequestsPerSecond(c.Float64("embedding-rps")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := podrec.NewDatabase(c.String("db"), podrec.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	src, err := source.NewDirSource(c.String("source"))
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}

	opts := []ingest.Option{
		ingest.WithCollectionsPerCycle(c.Int("collections-per-cycle")),
		ingest.WithPoolSize(c.Int("pool-size")),
		ingest.WithRetryPolicy(c.Int("max-retries"), c.Duration("retry-delay")),
	}

	if vocabPath := c.String("tags-vocab"); vocabPath != "" {
		vocab, err := tags.LoadVocabulary(vocabPath)
		if err != nil {
			return fmt.Errorf("failed to load tag vocabulary: %w", err)
		}
		extractor, err := tags.NewExtractor(vocab, tags.WithEmbedder(db.Embedder()))
		if err != nil {
			return fmt.Errorf("failed to create tag extractor: %w", err)
		}
		if err := extractor.PrepareVocabularyVectors(ctx); err != nil {
			return fmt.Errorf("failed to embed tag vocabulary: %w", err)
		}
		opts = append(opts, ingest.WithTagger(extractor))
	}

	pipeline, err := db.NewIngestionPipeline(src, opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	report, err := pipeline.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Cycle:       %d\n", report.Cycle)
	fmt.Printf("Collections: %d completed, %d abandoned\n", report.Collections, report.Abandoned)
	fmt.Printf("Chunks:      %d inserted, %d rejected\n", report.Inserted, report.Rejected)
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query text is required")
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := podrec.NewDatabase(c.String("db"), podrec.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var engineOpts []recommend.EngineOption
	if lexiconPath := c.String("categories"); lexiconPath != "" {
		lexicons, err := classify.LoadLexicons(lexiconPath)
		if err != nil {
			return fmt.Errorf("failed to load category lexicons: %w", err)
		}
		classifier, err := classify.NewClassifier(lexicons)
		if err != nil {
			return fmt.Errorf("failed to create classifier: %w", err)
		}
		engineOpts = append(engineOpts, recommend.WithClassifier(classifier))
	}

	engine, err := db.NewRecommendEngine(engineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	controller, err := recommend.NewController(
		recommend.WithThreshold(c.Float64("threshold")),
		recommend.WithFallbackEnabled(!c.Bool("no-fallback")),
	)
	if err != nil {
		return fmt.Errorf("invalid controller configuration: %w", err)
	}

	result, categoryResult, err := engine.Recommend(ctx, query, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	fmt.Printf("Category:   %s (confidence %.2f)\n", categoryResult.Category, categoryResult.Confidence)
	fmt.Printf("Matches:    %d (processing time %s)\n", len(result.Matches), result.ProcessingTime)
	fmt.Printf("Confidence: %.3f\n", result.Confidence)
	fmt.Println()

	var response strings.Builder
	for i, m := range result.Matches {
		fmt.Printf("%d. [%.3f] %s / %s (%s)\n", i+1, m.Score,
			m.Chunk.PodcastName, m.Chunk.EpisodeTitle, m.Chunk.ChunkId)
		fmt.Printf("   %s\n", m.Chunk.ChunkText)
		response.WriteString(m.Chunk.ChunkText)
	}

	confidence := controller.Score(query, response.String(), len(result.Matches), result.ProcessingTime)
	fmt.Println()
	fmt.Printf("Post-hoc confidence: %.3f\n", confidence)
	if controller.ShouldFallback(confidence) {
		fmt.Println("Decision: fall back to the secondary answering service")
	} else {
		fmt.Println("Decision: serve these results")
	}
	return nil
}

func journalCommand(c *cli.Context) error {
	ctx := context.Background()

	// No embedding calls on this path; a mock-free open still needs a
	// valid config, so reuse the defaults.
	db, err := podrec.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	records, err := db.JournalRepository().ListExceptions(ctx, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("Journal is empty.")
		return nil
	}
	for _, record := range records {
		fmt.Printf("%s  %-24s %s (%d chars)\n",
			record.Timestamp.Format(time.RFC3339),
			record.ChunkId,
			record.Reason,
			record.ChunkTextLength)
		if record.SourceLocation != "" {
			fmt.Printf("  source: %s\n", record.SourceLocation)
		}
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := podrec.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	count, err := db.ChunkRepository().CountChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}
	fmt.Printf("Chunks: %d\n", count)

	progress, err := db.ProgressRepository().LoadProgress(ctx)
	if err != nil {
		fmt.Println("Progress: no ingestion recorded yet")
		return nil
	}
	fmt.Printf("Cycle:  %d\n", progress.CurrentCycle)
	fmt.Printf("Last:   %s\n", progress.LastProcessedCollection)
	fmt.Printf("Total:  %d chunks\n", progress.TotalProcessedChunks)
	fmt.Printf("Done:   %s\n", strings.Join(progress.CompletedCollections, ", "))
	fmt.Printf("As of:  %s\n", progress.UpdatedAt.Format(time.RFC3339))
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
