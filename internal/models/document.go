// Package models defines core data structures for documents, chunks, queries, and results.
package models

import "time"

// DocumentStatus tracks a document through the ingestion lifecycle.
type DocumentStatus string

const (
	StatusPending              DocumentStatus = "pending"
	StatusParsing              DocumentStatus = "parsing"
	StatusGeneratingEmbeddings DocumentStatus = "generating_embeddings"
	StatusProcessed            DocumentStatus = "processed"
	StatusFailed               DocumentStatus = "failed"
)

// Document represents stored document metadata. Content lives in chunks;
// the document record carries identity, lifecycle state, and structure.
type Document struct {
	ID        string           `json:"id" db:"id"`
	Filename  string           `json:"filename" db:"filename"`
	MimeType  string           `json:"mime_type" db:"mime_type"`
	Status    DocumentStatus   `json:"status" db:"status"`
	Error     string           `json:"error,omitempty" db:"error"`
	Language  string           `json:"language,omitempty" db:"language"`
	Outline   []OutlineSection `json:"outline,omitempty" db:"-"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`

	// Source provenance, set for file-based ingests and used for
	// incremental sync. Mod time is unix nanoseconds to avoid precision
	// loss in transport.
	SourcePath    string `json:"source_path,omitempty" db:"source_path"`
	SourceModTime int64  `json:"source_mod_time,omitempty" db:"source_mtime"`
	SourceSize    int64  `json:"source_size,omitempty" db:"source_size"`
}

// OutlineSection is one entry of a document's structural outline,
// recorded in reading order during ingestion.
type OutlineSection struct {
	Title     string `json:"title"`
	Level     int    `json:"level"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
}

// DocumentInput is the input for ingesting a document. The source fields
// record file provenance and are set by file ingestion, not by API clients.
type DocumentInput struct {
	ID            string `json:"id,omitempty"`
	Filename      string `json:"filename,omitempty"`
	MimeType      string `json:"mime_type,omitempty"`
	Content       string `json:"content"`
	SourcePath    string `json:"source_path,omitempty"`
	SourceModTime int64  `json:"source_mod_time,omitempty"`
	SourceSize    int64  `json:"source_size,omitempty"`
}
