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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/podrec/podrec/ai"
	"github.com/podrec/podrec/chunker"
	"github.com/podrec/podrec/core"
)

// Document is one cleaned transcript with its denormalized episode
// metadata, as delivered by the upstream cleaning subsystem.
type Document struct {
	DocumentId    string
	EpisodeId     int
	PodcastId     int
	PodcastName   string
	Author        string
	Category      string
	EpisodeTitle  string
	Duration      string
	PublishedDate string
	AppleRating   int
	Language      string
	Transcript    string
}

// Source delivers transcript documents grouped into collections.
type Source interface {
	// Collections lists every collection identifier, in stable order.
	Collections(ctx context.Context) ([]string, error)

	// Documents returns all documents of one collection.
	Documents(ctx context.Context, collectionId string) ([]*Document, error)
}

// Tagger assigns topic tags to chunk text. tags.Extractor satisfies this.
type Tagger interface {
	Extract(ctx context.Context, text string) []string
}

// CycleReport summarizes one pipeline run.
type CycleReport struct {
	Cycle       int
	Collections int
	Abandoned   int
	Inserted    int
	Rejected    int
}

// Pipeline drives one ingestion cycle: it picks the cycle's group of
// collections, chunks and embeds their documents on a bounded worker pool,
// writes batches through the Writer, and advances progress only after each
// collection's chunks are durably stored.
type Pipeline struct {
	source   Source
	writer   *Writer
	progress *ProgressStore
	embedder ai.Embedder
	splitter *chunker.Chunker
	tagger   Tagger

	pool                *ants.Pool
	collectionsPerCycle int
	maxAttempts         int
	baseDelay           time.Duration
	logger              *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent collection
// processing. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithCollectionsPerCycle bounds how many collections one cycle covers.
// Default is 5.
func WithCollectionsPerCycle(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return ErrInvalidCollectionsPerCycle
		}
		p.collectionsPerCycle = n
		return nil
	}
}

// WithRetryPolicy sets the retry budget for embedding and storage calls.
// Default is 3 attempts with a 500ms base delay.
func WithRetryPolicy(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithTagger attaches a tag extractor. Without one, chunks carry no tags.
func WithTagger(tagger Tagger) Option {
	return func(p *Pipeline) error {
		p.tagger = tagger
		return nil
	}
}

// WithChunker replaces the default transcript chunker.
func WithChunker(splitter *chunker.Chunker) Option {
	return func(p *Pipeline) error {
		if splitter != nil {
			p.splitter = splitter
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	source Source,
	writer *Writer,
	progress *ProgressStore,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if writer == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if progress == nil {
		return nil, ErrProgressRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	splitter, err := chunker.New(chunker.DefaultMaxChunkSize, chunker.DefaultOverlapSize)
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		source:              source,
		writer:              writer,
		progress:            progress,
		embedder:            embedder,
		splitter:            splitter,
		pool:                pool,
		collectionsPerCycle: 5,
		maxAttempts:         3,
		baseDelay:           500 * time.Millisecond,
		logger:              slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// RunCycle processes the current cycle's group of collections and, when
// every collection in the group succeeded, advances the cycle counter.
// Abandoned collections keep the cycle in place so the next run retries
// them from scratch.
func (p *Pipeline) RunCycle(ctx context.Context) (*CycleReport, error) {
	if err := p.progress.Load(ctx); err != nil {
		return nil, err
	}

	var collections []string
	err := RetryWithBackoff(ctx, func() error {
		var srcErr error
		collections, srcErr = p.source.Collections(ctx)
		return srcErr
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return nil, err
	}

	report := &CycleReport{Cycle: p.progress.Current().CurrentCycle}
	if len(collections) == 0 {
		return report, nil
	}

	group := p.cycleGroup(collections, report.Cycle)
	p.logger.Info("starting ingestion cycle",
		"cycle", report.Cycle,
		"collections", len(group),
		"totalCollections", len(collections))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, collectionId := range group {
		if p.progress.Completed(collectionId) {
			p.logger.Debug("skipping completed collection", "collection", collectionId)
			continue
		}

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			inserted, rejected, err := p.processCollection(ctx, collectionId)

			mu.Lock()
			defer mu.Unlock()
			report.Inserted += inserted
			report.Rejected += rejected
			if err != nil {
				// Abandoned: progress not advanced, the next run
				// retries this collection from scratch.
				report.Abandoned++
				p.logger.Error("collection abandoned",
					"collection", collectionId, "err", err)
				return
			}
			report.Collections++
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return nil, submitErr
		}
	}
	wg.Wait()

	if report.Abandoned == 0 {
		if err := p.progress.AdvanceCycle(ctx); err != nil {
			return report, err
		}
	}

	p.logger.Info("ingestion cycle finished",
		"cycle", report.Cycle,
		"completed", report.Collections,
		"abandoned", report.Abandoned,
		"inserted", report.Inserted,
		"rejected", report.Rejected)
	return report, nil
}

// cycleGroup partitions collections into fixed-size groups and returns the
// group this cycle covers.
func (p *Pipeline) cycleGroup(collections []string, cycle int) []string {
	numGroups := (len(collections) + p.collectionsPerCycle - 1) / p.collectionsPerCycle
	group := cycle % numGroups
	start := group * p.collectionsPerCycle
	end := start + p.collectionsPerCycle
	if end > len(collections) {
		end = len(collections)
	}
	return collections[start:end]
}

// processCollection ingests every document of one collection and marks it
// completed only after the last batch is durably inserted.
func (p *Pipeline) processCollection(ctx context.Context, collectionId string) (inserted, rejected int, err error) {
	var documents []*Document
	err = RetryWithBackoff(ctx, func() error {
		var srcErr error
		documents, srcErr = p.source.Documents(ctx, collectionId)
		return srcErr
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return 0, 0, err
	}

	for _, doc := range documents {
		chunks, buildErr := p.buildChunks(ctx, collectionId, doc)
		if buildErr != nil {
			return inserted, rejected, buildErr
		}
		if len(chunks) == 0 {
			continue
		}

		sourceLocation := collectionId + "/" + doc.DocumentId
		var report *Report
		insertErr := RetryWithBackoff(ctx, func() error {
			var batchErr error
			report, batchErr = p.writer.InsertBatch(ctx, chunks, sourceLocation)
			return batchErr
		}, p.maxAttempts, p.baseDelay)
		if insertErr != nil {
			return inserted, rejected, fmt.Errorf("inserting %s: %w", sourceLocation, insertErr)
		}
		inserted += report.Inserted
		rejected += report.Rejected
	}

	if err := p.progress.MarkCompleted(ctx, collectionId, inserted); err != nil {
		return inserted, rejected, err
	}
	return inserted, rejected, nil
}

// buildChunks splits a document's transcript, embeds the pieces in one
// batch call, and assembles the chunk records.
func (p *Pipeline) buildChunks(ctx context.Context, collectionId string, doc *Document) ([]*core.Chunk, error) {
	texts := p.splitter.Chunks(doc.Transcript)
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return nil, fmt.Errorf("embedding %s/%s: %w", collectionId, doc.DocumentId, err)
	}
	if len(vectors) != len(texts) {
		return nil, ErrEmbeddingCountMismatch
	}

	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		var tags []string
		if p.tagger != nil {
			tags = p.tagger.Extract(ctx, text)
		}
		chunks[i] = &core.Chunk{
			ChunkId:       chunkID(collectionId, doc, i),
			ChunkIndex:    i,
			EpisodeId:     doc.EpisodeId,
			PodcastId:     doc.PodcastId,
			PodcastName:   doc.PodcastName,
			Author:        doc.Author,
			Category:      doc.Category,
			EpisodeTitle:  doc.EpisodeTitle,
			Duration:      doc.Duration,
			PublishedDate: doc.PublishedDate,
			AppleRating:   doc.AppleRating,
			ChunkText:     text,
			Embedding:     vectors[i],
			Language:      doc.Language,
			Tags:          tags,
			SourceModel:   p.embedder.Model(),
		}
	}
	return chunks, nil
}

// chunkID derives the stable chunk identifier from document identity, so
// re-processing the same document always regenerates the same IDs.
func chunkID(collectionId string, doc *Document, chunkIndex int) string {
	if doc.EpisodeId > 0 {
		return core.ChunkID(doc.EpisodeId, chunkIndex)
	}
	return core.ChunkIDFromSource(collectionId, doc.DocumentId, chunkIndex)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
