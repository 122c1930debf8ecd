package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/podrec/podrec/core"
	"github.com/podrec/podrec/storage"
	badgerstore "github.com/podrec/podrec/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) (*Writer, storage.ChunkRepository, storage.JournalRepository) {
	t.Helper()
	chunkRepo, _, journalRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		journalRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})

	writer, err := NewWriter(chunkRepo, journalRepo, nil)
	require.NoError(t, err)
	return writer, chunkRepo, journalRepo
}

func writerChunk(episodeID, chunkIndex int, text string) *core.Chunk {
	return &core.Chunk{
		ChunkId:    core.ChunkID(episodeID, chunkIndex),
		ChunkIndex: chunkIndex,
		EpisodeId:  episodeID,
		ChunkText:  text,
		Embedding:  []float32{0.1, 0.2, 0.3},
	}
}

func TestInsertBatch_PartitionsOversizedChunk(t *testing.T) {
	writer, chunkRepo, journalRepo := newTestWriter(t)
	ctx := context.Background()

	oversized := writerChunk(100, 1, strings.Repeat("字", 1025))
	batch := []*core.Chunk{
		writerChunk(100, 0, "台股投資要看長期趨勢。"),
		oversized,
		writerChunk(100, 2, "風險控管比報酬率更重要。"),
	}

	report, err := writer.InsertBatch(ctx, batch, "gooaye/ep100.json")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, report.Rejected)

	// Accepted chunks are stored, the oversized one is not.
	_, err = chunkRepo.GetChunk(ctx, core.ChunkID(100, 0))
	assert.NoError(t, err)
	_, err = chunkRepo.GetChunk(ctx, oversized.ChunkId)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// The rejection is journaled, never silently dropped.
	records, err := journalRepo.ListExceptions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, oversized.ChunkId, records[0].ChunkId)
	assert.Equal(t, "gooaye/ep100.json", records[0].SourceLocation)
	assert.Equal(t, "chunk_text length exceeds 1024", records[0].Reason)
	assert.Equal(t, 1025, records[0].ChunkTextLength)
	assert.NotEmpty(t, records[0].PayloadSnapshot)
}

func TestInsertBatch_Idempotent(t *testing.T) {
	writer, chunkRepo, journalRepo := newTestWriter(t)
	ctx := context.Background()

	batch := []*core.Chunk{
		writerChunk(200, 0, "第一段內容。"),
		writerChunk(200, 1, "第二段內容。"),
	}

	first, err := writer.InsertBatch(ctx, batch, "gooaye/ep200.json")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)
	assert.Equal(t, 0, first.Rejected)

	// Re-inserting the same batch rejects everything as duplicates and
	// leaves the store unchanged.
	second, err := writer.InsertBatch(ctx, []*core.Chunk{
		writerChunk(200, 0, "第一段內容。"),
		writerChunk(200, 1, "第二段內容。"),
	}, "gooaye/ep200.json")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Rejected)

	count, err := chunkRepo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := journalRepo.ListExceptions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "duplicate chunk_id (already exists)", records[0].Reason)
}

func TestInsertBatch_DuplicateWithinBatch(t *testing.T) {
	writer, chunkRepo, _ := newTestWriter(t)
	ctx := context.Background()

	report, err := writer.InsertBatch(ctx, []*core.Chunk{
		writerChunk(300, 0, "內容甲。"),
		writerChunk(300, 0, "內容乙。"),
	}, "gooaye/ep300.json")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Rejected)

	// First occurrence wins.
	stored, err := chunkRepo.GetChunk(ctx, core.ChunkID(300, 0))
	require.NoError(t, err)
	assert.Equal(t, "內容甲。", stored.ChunkText)
}

// flakyChunkRepository fails the first AddChunks calls, then delegates.
type flakyChunkRepository struct {
	storage.ChunkRepository
	failures int
}

func (r *flakyChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("transient write failure")
	}
	return r.ChunkRepository.AddChunks(ctx, chunks...)
}

func TestInsertBatch_RetryJournalsRejectionsOnce(t *testing.T) {
	_, chunkRepo, journalRepo := newTestWriter(t)
	ctx := context.Background()

	flaky := &flakyChunkRepository{ChunkRepository: chunkRepo, failures: 1}
	writer, err := NewWriter(flaky, journalRepo, nil)
	require.NoError(t, err)

	oversized := writerChunk(400, 1, strings.Repeat("字", 1025))
	batch := []*core.Chunk{
		writerChunk(400, 0, "第一段內容。"),
		oversized,
	}

	// Retry the whole batch the way the pipeline does.
	var report *Report
	err = RetryWithBackoff(ctx, func() error {
		var batchErr error
		report, batchErr = writer.InsertBatch(ctx, batch, "gooaye/ep400.json")
		return batchErr
	}, 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Rejected)

	// The failed first attempt must not leave its own journal entry.
	records, err := journalRepo.ListExceptions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, oversized.ChunkId, records[0].ChunkId)
}

func TestInsertBatch_Empty(t *testing.T) {
	writer, _, _ := newTestWriter(t)

	report, err := writer.InsertBatch(context.Background(), nil, "gooaye/empty.json")
	require.NoError(t, err)
	assert.Zero(t, report.Inserted)
	assert.Zero(t, report.Rejected)
}

func TestNewWriter_Validation(t *testing.T) {
	_, chunkRepo, journalRepo := newTestWriter(t)

	_, err := NewWriter(nil, journalRepo, nil)
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewWriter(chunkRepo, nil, nil)
	assert.ErrorIs(t, err, ErrJournalRepositoryRequired)
}
