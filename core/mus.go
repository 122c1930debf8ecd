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


package core

import (
	"time"

	mus "github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted types. Field order is the struct order;
// timestamps are stored as Unix microseconds.
var (
	ChunkMUS           = chunkMUS{}
	ProgressMUS        = progressMUS{}
	ExceptionRecordMUS = exceptionRecordMUS{}
)

var (
	float32SliceSer = ord.NewSliceSer[float32](raw.Float32)
	stringSliceSer  = ord.NewSliceSer[string](ord.String)
)

var _ mus.Serializer[Chunk] = chunkMUS{}

type chunkMUS struct{}

func (s chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(c.ChunkId, bs)
	n += varint.Int.Marshal(c.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(c.EpisodeId, bs[n:])
	n += varint.Int.Marshal(c.PodcastId, bs[n:])
	n += ord.String.Marshal(c.PodcastName, bs[n:])
	n += ord.String.Marshal(c.Author, bs[n:])
	n += ord.String.Marshal(c.Category, bs[n:])
	n += ord.String.Marshal(c.EpisodeTitle, bs[n:])
	n += ord.String.Marshal(c.Duration, bs[n:])
	n += ord.String.Marshal(c.PublishedDate, bs[n:])
	n += varint.Int.Marshal(c.AppleRating, bs[n:])
	n += ord.String.Marshal(c.ChunkText, bs[n:])
	n += float32SliceSer.Marshal(c.Embedding, bs[n:])
	n += ord.String.Marshal(c.Language, bs[n:])
	n += stringSliceSer.Marshal(c.Tags, bs[n:])
	n += varint.Int64.Marshal(c.CreatedAt.UnixMicro(), bs[n:])
	n += ord.String.Marshal(c.SourceModel, bs[n:])
	return
}

func (s chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var (
		n1        int
		createdAt int64
	)
	if c.ChunkId, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if c.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.EpisodeId, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.PodcastId, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.PodcastName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Author, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Category, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.EpisodeTitle, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Duration, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.PublishedDate, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.AppleRating, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.ChunkText, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Embedding, n1, err = float32SliceSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Language, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Tags, n1, err = stringSliceSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if createdAt, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	c.CreatedAt = time.UnixMicro(createdAt).UTC()
	if c.SourceModel, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (s chunkMUS) Size(c Chunk) (size int) {
	size = ord.String.Size(c.ChunkId)
	size += varint.Int.Size(c.ChunkIndex)
	size += varint.Int.Size(c.EpisodeId)
	size += varint.Int.Size(c.PodcastId)
	size += ord.String.Size(c.PodcastName)
	size += ord.String.Size(c.Author)
	size += ord.String.Size(c.Category)
	size += ord.String.Size(c.EpisodeTitle)
	size += ord.String.Size(c.Duration)
	size += ord.String.Size(c.PublishedDate)
	size += varint.Int.Size(c.AppleRating)
	size += ord.String.Size(c.ChunkText)
	size += float32SliceSer.Size(c.Embedding)
	size += ord.String.Size(c.Language)
	size += stringSliceSer.Size(c.Tags)
	size += varint.Int64.Size(c.CreatedAt.UnixMicro())
	size += ord.String.Size(c.SourceModel)
	return
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

var _ mus.Serializer[Progress] = progressMUS{}

type progressMUS struct{}

func (s progressMUS) Marshal(p Progress, bs []byte) (n int) {
	n = varint.Int.Marshal(p.CurrentCycle, bs)
	n += ord.String.Marshal(p.LastProcessedCollection, bs[n:])
	n += varint.Int.Marshal(p.TotalProcessedChunks, bs[n:])
	n += stringSliceSer.Marshal(p.CompletedCollections, bs[n:])
	n += varint.Int64.Marshal(p.UpdatedAt.UnixMicro(), bs[n:])
	return
}

func (s progressMUS) Unmarshal(bs []byte) (p Progress, n int, err error) {
	var (
		n1        int
		updatedAt int64
	)
	if p.CurrentCycle, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if p.LastProcessedCollection, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if p.TotalProcessedChunks, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if p.CompletedCollections, n1, err = stringSliceSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if updatedAt, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	p.UpdatedAt = time.UnixMicro(updatedAt).UTC()
	return
}

func (s progressMUS) Size(p Progress) (size int) {
	size = varint.Int.Size(p.CurrentCycle)
	size += ord.String.Size(p.LastProcessedCollection)
	size += varint.Int.Size(p.TotalProcessedChunks)
	size += stringSliceSer.Size(p.CompletedCollections)
	size += varint.Int64.Size(p.UpdatedAt.UnixMicro())
	return
}

func (s progressMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

var _ mus.Serializer[ExceptionRecord] = exceptionRecordMUS{}

type exceptionRecordMUS struct{}

func (s exceptionRecordMUS) Marshal(r ExceptionRecord, bs []byte) (n int) {
	n = varint.Int64.Marshal(r.Timestamp.UnixMicro(), bs)
	n += ord.String.Marshal(r.ChunkId, bs[n:])
	n += ord.String.Marshal(r.SourceLocation, bs[n:])
	n += ord.String.Marshal(r.Reason, bs[n:])
	n += varint.Int.Marshal(r.ChunkTextLength, bs[n:])
	n += ord.String.Marshal(r.PayloadSnapshot, bs[n:])
	return
}

func (s exceptionRecordMUS) Unmarshal(bs []byte) (r ExceptionRecord, n int, err error) {
	var (
		n1        int
		timestamp int64
	)
	if timestamp, n, err = varint.Int64.Unmarshal(bs); err != nil {
		return
	}
	r.Timestamp = time.UnixMicro(timestamp).UTC()
	if r.ChunkId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.SourceLocation, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.Reason, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.ChunkTextLength, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.PayloadSnapshot, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (s exceptionRecordMUS) Size(r ExceptionRecord) (size int) {
	size = varint.Int64.Size(r.Timestamp.UnixMicro())
	size += ord.String.Size(r.ChunkId)
	size += ord.String.Size(r.SourceLocation)
	size += ord.String.Size(r.Reason)
	size += varint.Int.Size(r.ChunkTextLength)
	size += ord.String.Size(r.PayloadSnapshot)
	return
}

func (s exceptionRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
