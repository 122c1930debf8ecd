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


// Package ai defines the embedding service boundary for podrec.
//
// The embedding model is never implemented in-process; the Embedder
// interface is the only way the ingestion pipeline and the recommender
// reach it. Public constructors in the implementation packages return the
// interface type to enforce that abstraction:
//
//	embedder, err := openai.NewEmbedder(config)  // returns ai.Embedder
//
// # Implementation Packages
//
//   - ai/openai: production implementation for OpenAI-compatible APIs,
//     with request rate limiting
//   - ai/mock: deterministic test double for unit testing without an
//     external service
package ai
