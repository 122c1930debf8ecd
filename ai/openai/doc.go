// Package openai provides the production ai.Embedder implementation for
// OpenAI-compatible embedding APIs (Ollama, LocalAI, vLLM, OpenAI itself).
// Requests are rate-limited when the configuration asks for it, and every
// call is bounded by the configured request timeout.
package openai
