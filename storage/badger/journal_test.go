package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/podrec/podrec/core"
)

func TestJournalAppendAndList(t *testing.T) {
	_, _, journalRepo := newTestRepos(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		record := &core.ExceptionRecord{
			ChunkId:         fmt.Sprintf("ep100_c%d", i),
			SourceLocation:  "gooaye/ep100.json",
			Reason:          "chunk_text length exceeds 1024",
			ChunkTextLength: 1100 + i,
			PayloadSnapshot: "台股投資...",
		}
		if err := journalRepo.AppendException(ctx, record); err != nil {
			t.Fatalf("Failed to append exception: %v", err)
		}
		if record.Timestamp.IsZero() {
			t.Fatal("Expected Timestamp to be stamped")
		}
	}

	records, err := journalRepo.ListExceptions(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list exceptions: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(records))
	}

	// Append order must be preserved.
	for i, record := range records {
		want := fmt.Sprintf("ep100_c%d", i)
		if record.ChunkId != want {
			t.Fatalf("Expected %q at position %d, got %q", want, i, record.ChunkId)
		}
	}
}

func TestJournalListLimit(t *testing.T) {
	_, _, journalRepo := newTestRepos(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		record := &core.ExceptionRecord{
			ChunkId: fmt.Sprintf("ep200_c%d", i),
			Reason:  "duplicate chunk_id (already exists)",
		}
		if err := journalRepo.AppendException(ctx, record); err != nil {
			t.Fatalf("Failed to append exception: %v", err)
		}
	}

	records, err := journalRepo.ListExceptions(ctx, 3)
	if err != nil {
		t.Fatalf("Failed to list exceptions: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0].ChunkId != "ep200_c0" {
		t.Fatalf("Expected oldest record first, got %q", records[0].ChunkId)
	}
}
