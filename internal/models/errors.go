// ABOUTME: Sentinel errors shared by the chat core and its adapters
// ABOUTME: Callers match them with errors.Is; wrapping adds context
package models

import "errors"

var (
	// ErrInvalidConfiguration indicates bad chunking or engine parameters.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptyCorpus indicates there were no chunks to index.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrNoCorpus indicates a question was asked before any document was processed.
	ErrNoCorpus = errors.New("no corpus indexed: process a document first")

	// ErrProvider indicates an embedding or generation provider failure,
	// including responses with an invalid shape.
	ErrProvider = errors.New("provider error")

	// ErrGeneration indicates an ask call failed; history is left untouched.
	ErrGeneration = errors.New("generation failed")

	// ErrUnreadableDocument indicates text extraction failed.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrEmbeddingMismatch indicates the query embedder differs from the one
	// the installed index was built with.
	ErrEmbeddingMismatch = errors.New("embedding model mismatch")

	// ErrInvalidInput indicates malformed or empty input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested record or chapter does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the auth gate rejected the session.
	ErrUnauthorized = errors.New("unauthorized")
)
