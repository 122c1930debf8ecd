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


// Package podrec assembles the podcast transcript recommendation system:
// a badger-backed chunk store, the ingestion pipeline, and the
// recommendation engine, behind one Database handle.
package podrec

import (
	"log/slog"

	"github.com/podrec/podrec/ai"
	"github.com/podrec/podrec/ai/openai"
	"github.com/podrec/podrec/ingest"
	"github.com/podrec/podrec/recommend"
	"github.com/podrec/podrec/storage"
	"github.com/podrec/podrec/storage/badger"
)

// Database bundles the storage backend, repositories, and the embedding
// client for one podrec instance.
type Database struct {
	backend      *badger.Backend
	chunkRepo    storage.ChunkRepository
	progressRepo storage.ProgressRepository
	journalRepo  storage.JournalRepository
	embedder     ai.Embedder
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	inMemory bool
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEmbedder injects an embedder directly, bypassing the OpenAI client.
// Used by tests.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithInMemory opens the backend in memory instead of on disk.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the storage backend at filePath and wires up the
// repositories and the embedding client.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	chunkRepo := badger.NewChunkRepository(backend)
	progressRepo := badger.NewProgressRepository(backend)

	journalRepo, err := badger.NewJournalRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			journalRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:      backend,
		chunkRepo:    chunkRepo,
		progressRepo: progressRepo,
		journalRepo:  journalRepo,
		embedder:     embedder,
		logger:       slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.journalRepo.Close(); err != nil {
		db.logger.Error("error closing journal repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) ProgressRepository() storage.ProgressRepository {
	return db.progressRepo
}

func (db *Database) JournalRepository() storage.JournalRepository {
	return db.journalRepo
}

func (db *Database) Embedder() ai.Embedder {
	return db.embedder
}

// NewIngestionPipeline builds an ingestion pipeline over this database.
func (db *Database) NewIngestionPipeline(src ingest.Source, opts ...ingest.Option) (*ingest.Pipeline, error) {
	writer, err := ingest.NewWriter(db.chunkRepo, db.journalRepo, db.logger)
	if err != nil {
		return nil, err
	}
	progress, err := ingest.NewProgressStore(db.progressRepo)
	if err != nil {
		return nil, err
	}
	return ingest.NewPipeline(src, writer, progress, db.embedder, opts...)
}

// NewRecommendEngine builds a recommendation engine over this database.
func (db *Database) NewRecommendEngine(opts ...recommend.EngineOption) (*recommend.Engine, error) {
	return recommend.NewEngine(db.chunkRepo, db.embedder, opts...)
}
