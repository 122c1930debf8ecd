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
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/podrec/podrec/core"
	"github.com/podrec/podrec/storage"
)

const snapshotRunes = 120

// Report summarizes the outcome of one batch insert.
type Report struct {
	Inserted int
	Rejected int
}

// Writer inserts validated chunk batches and journals every rejection.
// Rejections never fail the batch; only storage errors on the accepted
// portion do.
type Writer struct {
	chunks  storage.ChunkRepository
	journal storage.JournalRepository
	logger  *slog.Logger
}

// NewWriter creates a Writer over the given repositories.
func NewWriter(chunks storage.ChunkRepository, journal storage.JournalRepository, logger *slog.Logger) (*Writer, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if journal == nil {
		return nil, ErrJournalRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		chunks:  chunks,
		journal: journal,
		logger:  logger.With("component", "ingest-writer"),
	}, nil
}

// rejection pairs a partitioned-out chunk with its journal reason.
type rejection struct {
	chunk  *core.Chunk
	reason string
}

// InsertBatch inserts a batch of chunks. The whole batch is checked for
// existing IDs in one read transaction, invalid and duplicate chunks are
// partitioned out, and the accepted remainder is written in one batch.
// Each rejection produces one exception journal entry, written only after
// the accepted portion is durable: a caller retrying a failed batch must
// not journal the same rejection twice. sourceLocation names where the
// batch came from, for the journal.
func (w *Writer) InsertBatch(ctx context.Context, chunks []*core.Chunk, sourceLocation string) (*Report, error) {
	report := &Report{}
	if len(chunks) == 0 {
		return report, nil
	}

	ids := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		ids = append(ids, chunk.ChunkId)
	}

	existing, err := w.chunks.ExistingIDs(ctx, ids...)
	if err != nil {
		return nil, err
	}

	// Partition into accepted and rejected. seen catches duplicates inside
	// the batch itself, which the existence check cannot.
	accepted := make([]*core.Chunk, 0, len(chunks))
	var rejections []rejection
	seen := make(map[string]bool, len(chunks))
	for _, chunk := range chunks {
		switch {
		case existing[chunk.ChunkId] || seen[chunk.ChunkId]:
			rejections = append(rejections, rejection{chunk, "duplicate chunk_id (already exists)"})
		default:
			if err := core.ValidateChunk(chunk); err != nil {
				rejections = append(rejections, rejection{chunk, rejectionReason(err)})
				continue
			}
			seen[chunk.ChunkId] = true
			accepted = append(accepted, chunk)
		}
	}

	if len(accepted) > 0 {
		if err := w.chunks.AddChunks(ctx, accepted...); err != nil {
			return nil, err
		}
		report.Inserted = len(accepted)
	}

	for _, r := range rejections {
		w.reject(ctx, r.chunk, sourceLocation, r.reason)
	}
	report.Rejected = len(rejections)

	w.logger.Debug("batch inserted",
		"source", sourceLocation,
		"inserted", report.Inserted,
		"rejected", report.Rejected)
	return report, nil
}

// reject journals a rejected chunk. Journal failures are logged and
// swallowed so one bad append cannot sink an otherwise good batch.
func (w *Writer) reject(ctx context.Context, chunk *core.Chunk, sourceLocation, reason string) {
	record := &core.ExceptionRecord{
		Timestamp:       time.Now().UTC(),
		ChunkId:         chunk.ChunkId,
		SourceLocation:  sourceLocation,
		Reason:          reason,
		ChunkTextLength: utf8.RuneCountInString(chunk.ChunkText),
		PayloadSnapshot: snapshot(chunk.ChunkText),
	}
	if err := w.journal.AppendException(ctx, record); err != nil {
		w.logger.Error("failed to journal rejected chunk",
			"chunkId", chunk.ChunkId, "reason", reason, "err", err)
	}
}

// rejectionReason maps a validation error to a stable journal reason.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, core.ErrChunkTextTooLong):
		return fmt.Sprintf("chunk_text length exceeds %d", core.MaxChunkTextLen)
	case errors.Is(err, core.ErrChunkIDTooLong):
		return fmt.Sprintf("chunk_id length exceeds %d", core.MaxChunkIDLen)
	default:
		return err.Error()
	}
}

// snapshot truncates text to a short preview for the journal.
func snapshot(text string) string {
	runes := []rune(text)
	if len(runes) <= snapshotRunes {
		return text
	}
	return string(runes[:snapshotRunes]) + "..."
}
