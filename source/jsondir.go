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


// Package source adapts cleaned transcript exports on disk to the
// ingestion pipeline. A DirSource reads a directory tree where every
// top-level subdirectory is one collection and every *.json file inside it
// is one document produced by the upstream cleaning subsystem.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/podrec/podrec/ingest"
)

// ErrRootRequired is returned when the source root directory is missing.
var ErrRootRequired = errors.New("source root directory required")

// document is the on-disk JSON shape of one cleaned transcript.
type document struct {
	EpisodeId     int    `json:"episode_id"`
	PodcastId     int    `json:"podcast_id"`
	PodcastName   string `json:"podcast_name"`
	Author        string `json:"author"`
	Category      string `json:"category"`
	EpisodeTitle  string `json:"episode_title"`
	Duration      string `json:"duration"`
	PublishedDate string `json:"published_date"`
	AppleRating   int    `json:"apple_rating"`
	Language      string `json:"language"`
	Transcript    string `json:"transcript"`
}

// DirSource reads transcript documents from a directory tree.
type DirSource struct {
	root string
}

var _ ingest.Source = (*DirSource)(nil)

// NewDirSource creates a DirSource rooted at the given directory.
func NewDirSource(root string) (*DirSource, error) {
	if root == "" {
		return nil, ErrRootRequired
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	return &DirSource{root: root}, nil
}

// Collections lists the collection subdirectories in lexicographic order,
// so cycle grouping is stable across runs.
func (s *DirSource) Collections(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	var collections []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			collections = append(collections, entry.Name())
		}
	}
	sort.Strings(collections)
	return collections, nil
}

// Documents reads every *.json document of one collection, in file name
// order.
func (s *DirSource) Documents(ctx context.Context, collectionId string) ([]*ingest.Document, error) {
	dir := filepath.Join(s.root, collectionId)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var documents []*ingest.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := s.readDocument(filepath.Join(dir, entry.Name()), entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s/%s: %w", collectionId, entry.Name(), err)
		}
		documents = append(documents, doc)
	}
	return documents, nil
}

func (s *DirSource) readDocument(path, name string) (*ingest.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return &ingest.Document{
		DocumentId:    name,
		EpisodeId:     doc.EpisodeId,
		PodcastId:     doc.PodcastId,
		PodcastName:   doc.PodcastName,
		Author:        doc.Author,
		Category:      doc.Category,
		EpisodeTitle:  doc.EpisodeTitle,
		Duration:      doc.Duration,
		PublishedDate: doc.PublishedDate,
		AppleRating:   doc.AppleRating,
		Language:      doc.Language,
		Transcript:    doc.Transcript,
	}, nil
}
