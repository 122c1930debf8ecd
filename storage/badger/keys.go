package badger

import (
	"encoding/binary"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix   = "chkrec"
	chunkEpisodePrefix  = "chkep"
	chunkCategoryPrefix = "chkcat"
	journalPrefix       = "jrnl"
	journalSeq          = "jrnlseq"
	progressKey         = "ingprog"
)

// makeChunkKey generates a key for a chunk record by ID.
func makeChunkKey(chunkID string) []byte {
	return []byte(chunkRecordPrefix + ":" + chunkID)
}

// makeEpisodeKey generates a composite key for the episode index.
// Format: prefix:episodeID:chunkIndex with both numbers in BigEndian so
// lexicographic iteration yields chunk_index order.
func makeEpisodeKey(episodeID, chunkIndex int) []byte {
	prefix := []byte(chunkEpisodePrefix + ":")
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(episodeID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkIndex))
	return buf
}

// makePartialEpisodeKey generates a partial key for scanning all chunks of
// an episode.
func makePartialEpisodeKey(episodeID int) []byte {
	prefix := []byte(chunkEpisodePrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(episodeID))
	return buf
}

// makeCategoryKey generates a composite key for the category index.
// Format: prefix:category\x00chunkID. The NUL separator keeps one category
// from matching another category's prefix.
func makeCategoryKey(category, chunkID string) []byte {
	buf := make([]byte, 0, len(chunkCategoryPrefix)+1+len(category)+1+len(chunkID))
	buf = append(buf, chunkCategoryPrefix...)
	buf = append(buf, ':')
	buf = append(buf, category...)
	buf = append(buf, 0)
	buf = append(buf, chunkID...)
	return buf
}

// makePartialCategoryKey generates a partial key for scanning a category.
func makePartialCategoryKey(category string) []byte {
	buf := make([]byte, 0, len(chunkCategoryPrefix)+1+len(category)+1)
	buf = append(buf, chunkCategoryPrefix...)
	buf = append(buf, ':')
	buf = append(buf, category...)
	buf = append(buf, 0)
	return buf
}

// makeJournalKey generates a key for a journal record by sequence number.
// BigEndian keeps append order under lexicographic iteration.
func makeJournalKey(seq uint64) []byte {
	prefix := []byte(journalPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeProgressKey generates the key for the single progress record.
func makeProgressKey() []byte {
	return []byte(progressKey)
}
