// Package storage defines the persistence interface for documents and chunks.
package storage

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// Storage defines document and chunk persistence operations.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	SetDocumentStatus(ctx context.Context, id string, status models.DocumentStatus, errMsg string) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)

	// Chunk operations
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)
	GetChunks(ctx context.Context, ids []string) ([]*models.Chunk, error)
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.Chunk, error)
	// ReplaceChunks atomically swaps all chunks of a document, so a
	// re-ingest never leaves a mix of old and new chunks behind.
	ReplaceChunks(ctx context.Context, docID string, chunks []*models.Chunk) error
	DeleteChunksByDocumentID(ctx context.Context, docID string) error

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
