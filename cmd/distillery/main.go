// Copyright 2025 Poiesic Systems
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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/distillery"
	"github.com/poiesic/distillery/ai"
	"github.com/poiesic/distillery/ai/openai"
	"github.com/poiesic/distillery/core"
	"github.com/poiesic/distillery/distill"
	"github.com/poiesic/distillery/imageio"
	"github.com/poiesic/distillery/ingestion"
	"github.com/poiesic/distillery/notify/telegram"
	"github.com/poiesic/distillery/reprocess"
	"github.com/poiesic/distillery/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "distillery",
		Usage: "Distill raw notes, articles and screenshots into structured knowledge cards",
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
				Name:      "distill",
				Usage:     "Distill content into a knowledge card without storing it",
				ArgsUsage: "[text content]",
				Action:    distillCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read content from a file instead of arguments ('-' for stdin)",
					},
					&cli.StringSliceFlag{
						Name:    "image",
						Aliases: []string{"i"},
						Usage:   "Image reference (path or URL); may be repeated",
					},
					&cli.StringFlag{
						Name:    "upload-dir",
						Usage:   "Directory image references are resolved against",
						EnvVars: []string{"DISTILLERY_UPLOAD_DIR"},
					},
				),
			},
			{
				Name:      "add",
				Usage:     "Ingest content and distill it into a knowledge card",
				ArgsUsage: "[text content]",
				Action:    addCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read content from a file instead of arguments ('-' for stdin)",
					},
					&cli.StringSliceFlag{
						Name:    "image",
						Aliases: []string{"i"},
						Usage:   "Image reference (path or URL); may be repeated",
					},
					&cli.StringFlag{
						Name:  "source-url",
						Usage: "URL the content was taken from",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Title hint for the record",
					},
					&cli.StringFlag{
						Name:    "upload-dir",
						Usage:   "Directory image references are resolved against",
						EnvVars: []string{"DISTILLERY_UPLOAD_DIR"},
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search stored knowledge cards",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of hits",
						Value:   5,
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embeddings for all knowledge records",
				Action: reembedCommand,
				Flags: append(aiFlags(), append(bulkFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				)...),
			},
			{
				Name:   "redistill",
				Usage:  "Re-run distillation over stored knowledge records",
				Action: redistillCommand,
				Flags: append(aiFlags(), append(bulkFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "only-failed",
						Usage: "Only redistill records whose previous distillation failed",
					},
				)...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "ai-host",
			Usage:   "OpenAI-compatible API base URL",
			Value:   "https://openrouter.ai/api/v1",
			EnvVars: []string{"DISTILLERY_AI_HOST"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the AI service",
			EnvVars: []string{"DISTILLERY_API_KEY", "OPENROUTER_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "chat-model",
			Usage:   "Vision-capable completion model",
			Value:   "anthropic/claude-3.5-sonnet",
			EnvVars: []string{"DISTILLERY_CHAT_MODEL"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "openai/text-embedding-3-small",
			EnvVars: []string{"DISTILLERY_EMBEDDING_MODEL"},
		},
	}
}

func bulkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of records to process in each batch",
			Value: 100,
		},
		&cli.IntFlag{
			Name:  "report-interval",
			Usage: "Report progress every N records",
			Value: 100,
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
	}
}

func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	config := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

// notifierOptions returns ingestion options for the optional Telegram
// notifier, configured entirely from environment variables.
func notifierOptions() []ingestion.Option {
	token := os.Getenv("DISTILLERY_TELEGRAM_TOKEN")
	chatID := os.Getenv("DISTILLERY_TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		return nil
	}
	return []ingestion.Option{
		ingestion.WithNotifier(telegram.New(token, chatID)),
	}
}

func distillCommand(c *cli.Context) error {
	ctx := context.Background()

	content, err := readContent(c)
	if err != nil {
		return err
	}
	images := c.StringSlice("image")
	if content == "" && len(images) == 0 {
		return fmt.Errorf("no content: pass text arguments, --file, or --image")
	}

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	gateway, err := openai.NewGateway(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	resolverOpts := []imageio.Option{}
	if dir := c.String("upload-dir"); dir != "" {
		resolverOpts = append(resolverOpts, imageio.WithUploadDirs(dir))
	}

	pipeline, err := distill.NewPipeline(gateway,
		distill.WithImageResolver(imageio.NewResolver(resolverOpts...)),
		distill.WithTimeouts(aiConfig.TextTimeout, aiConfig.VisionTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	// The classification error is deliberately dropped: the one-shot
	// command has no record to flag for reprocessing, and the card
	// itself already describes what went wrong.
	card, _ := pipeline.Run(ctx, distill.Input{
		Content: content,
		Images:  images,
		Label:   "cli",
	})

	out, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode card: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func addCommand(c *cli.Context) error {
	ctx := context.Background()

	content, err := readContent(c)
	if err != nil {
		return err
	}
	images := c.StringSlice("image")
	if content == "" && len(images) == 0 {
		return fmt.Errorf("no content: pass text arguments, --file, or --image")
	}

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	db, err := distillery.NewDatabase(c.String("db"), distillery.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Inline processing: the command waits for the card anyway, and a
	// second background run of the same record would conflict with it.
	opts := append(notifierOptions(), ingestion.WithInlineProcessing())
	if dir := c.String("upload-dir"); dir != "" {
		opts = append(opts, ingestion.WithImageResolver(imageio.NewResolver(imageio.WithUploadDirs(dir))))
	} else {
		opts = append(opts, ingestion.WithImageResolver(imageio.NewResolver()))
	}

	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	sourceURL := c.String("source-url")
	sourceType := core.SourceTypeManual
	switch {
	case c.String("file") != "" && c.String("file") != "-":
		sourceType = core.SourceTypeFile
	case sourceURL != "":
		sourceType = core.SourceTypeURL
	case content == "":
		sourceType = core.SourceTypeImage
	}

	record, err := pipeline.Ingest(ctx, ingestion.IngestRequest{
		Content:    content,
		Images:     images,
		SourceType: sourceType,
		SourceURL:  sourceURL,
		Title:      c.String("title"),
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	printCard(os.Stdout, record)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	db, err := distillery.NewDatabase(c.String("db"), distillery.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.FindSimilar(ctx, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		title := hit.Record.Title
		if hit.Record.Card != nil && hit.Record.Card.Title != "" {
			title = hit.Record.Card.Title
		}
		fmt.Printf("%d: %q (%d)[%0.3f]\n", i+1, title, hit.Record.Id, hit.Score)
		if hit.Record.Card != nil && hit.Record.Card.Summary != "" {
			fmt.Printf("   %s\n", hit.Record.Card.Summary)
		}
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewKnowledgeRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config, err := bulkConfigFromFlags(c)
	if err != nil {
		return err
	}

	reembedder := reprocess.NewReembedder(repo, embedder, config, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func redistillCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	db, err := distillery.NewDatabase(dbPath, distillery.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	config, err := bulkConfigFromFlags(c)
	if err != nil {
		return err
	}

	redistiller, err := db.NewRedistiller(config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create redistiller: %w", err)
	}
	redistiller.OnlyFailed = c.Bool("only-failed")

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Chat model: %s\n", c.String("chat-model"))
	fmt.Fprintln(os.Stderr)

	if err := redistiller.Run(ctx); err != nil {
		return fmt.Errorf("redistillation failed: %w", err)
	}
	return nil
}

func bulkConfigFromFlags(c *cli.Context) (*reprocess.Config, error) {
	config := &reprocess.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return nil, fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return nil, fmt.Errorf("max-retries must be greater than 0")
	}
	return config, nil
}

func readContent(c *cli.Context) (string, error) {
	if path := c.String("file"); path != "" {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read content: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(strings.Join(c.Args().Slice(), " ")), nil
}

func printCard(w io.Writer, record *core.KnowledgeRecord) {
	fmt.Fprintf(w, "Record %d (%s)\n", record.Id, record.Status)
	card := record.Card
	if card == nil {
		return
	}

	fmt.Fprintf(w, "\n%s\n", card.Title)
	fmt.Fprintf(w, "%s\n", card.Summary)
	fmt.Fprintf(w, "\nCategory: %s | Difficulty: %s\n", card.Category, card.Difficulty)
	if len(card.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(card.Tags, ", "))
	}
	if len(card.KeyPoints) > 0 {
		fmt.Fprintln(w, "\nKey points:")
		for _, point := range card.KeyPoints {
			fmt.Fprintf(w, "  - %s\n", point)
		}
	}
	if len(card.ActionItems) > 0 {
		fmt.Fprintln(w, "\nAction items:")
		for _, item := range card.ActionItems {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
	if card.RepoURL != "" {
		fmt.Fprintf(w, "\nRepo: %s\n", card.RepoURL)
	}
	if card.OfficialDocs != "" {
		fmt.Fprintf(w, "Docs: %s\n", card.OfficialDocs)
	}
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
