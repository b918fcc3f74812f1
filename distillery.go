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


package distillery

import (
	"io"
	"log/slog"

	"github.com/poiesic/distillery/ai"
	"github.com/poiesic/distillery/ai/openai"
	"github.com/poiesic/distillery/distill"
	"github.com/poiesic/distillery/ingestion"
	"github.com/poiesic/distillery/reprocess"
	"github.com/poiesic/distillery/search"
	"github.com/poiesic/distillery/storage"
	"github.com/poiesic/distillery/storage/badger"
)

// Database bundles the storage backend, the knowledge repository and
// the AI provider behind a single open/close lifecycle. It is the
// entry point for embedding the distillery into another program.
type Database struct {
	backend       *badger.Backend
	knowledgeRepo storage.KnowledgeRepository
	provider      ai.AIProvider
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig overrides the default AI provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	knowledgeRepo, err := badger.NewKnowledgeRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		knowledgeRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:       backend,
		knowledgeRepo: knowledgeRepo,
		provider:      provider,
		logger:        slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.knowledgeRepo.Close(); err != nil {
		db.logger.Error("error closing knowledge repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) KnowledgeRepository() storage.KnowledgeRepository {
	return db.knowledgeRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.knowledgeRepo, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.knowledgeRepo, db.provider, opts...)
}

// NewReembedder creates a bulk embedding regenerator writing progress
// to the given writer. A nil config uses reprocess defaults.
func (db *Database) NewReembedder(config *reprocess.Config, progress io.Writer) *reprocess.Reembedder {
	return reprocess.NewReembedder(db.knowledgeRepo, db.provider.Embedder(), config, progress)
}

// NewRedistiller creates a bulk card regenerator writing progress to
// the given writer. A nil config uses reprocess defaults.
func (db *Database) NewRedistiller(config *reprocess.Config, progress io.Writer, opts ...distill.Option) (*reprocess.Redistiller, error) {
	pipeline, err := distill.NewPipeline(db.provider.Gateway(), opts...)
	if err != nil {
		return nil, err
	}
	return reprocess.NewRedistiller(db.knowledgeRepo, pipeline, config, progress), nil
}
