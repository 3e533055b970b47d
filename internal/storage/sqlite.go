// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT,
		mime_type TEXT,
		status TEXT NOT NULL,
		error TEXT,
		language TEXT,
		outline TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		source_path TEXT DEFAULT '',
		source_mtime INTEGER DEFAULT 0,
		source_size INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		chunk_number INTEGER NOT NULL,
		content TEXT NOT NULL,
		start_char INTEGER NOT NULL,
		end_char INTEGER NOT NULL,
		section_type TEXT,
		section_level INTEGER,
		stats TEXT,
		quality TEXT,
		embedding_model TEXT,
		embedding_dims INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_document_number ON chunks(document_id, chunk_number);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateDocument inserts a document.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *models.Document) error {
	outlineJSON, err := json.Marshal(doc.Outline)
	if err != nil {
		return fmt.Errorf("failed to marshal outline: %w", err)
	}

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.MimeType, string(doc.Status), doc.Error, doc.Language,
		string(outlineJSON), doc.CreatedAt, doc.UpdatedAt,
		doc.SourcePath, doc.SourceModTime, doc.SourceSize,
	)
	return err
}

const documentColumns = `id, filename, mime_type, status, error, language, outline,
	created_at, updated_at, source_path, source_mtime, source_size`

// GetDocument returns a document by ID.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id,
	)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var status, outlineJSON string
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.MimeType, &status, &doc.Error,
		&doc.Language, &outlineJSON, &doc.CreatedAt, &doc.UpdatedAt,
		&doc.SourcePath, &doc.SourceModTime, &doc.SourceSize); err != nil {
		return nil, err
	}
	doc.Status = models.DocumentStatus(status)
	if outlineJSON != "" && outlineJSON != "null" {
		if err := json.Unmarshal([]byte(outlineJSON), &doc.Outline); err != nil {
			return nil, fmt.Errorf("failed to unmarshal outline: %w", err)
		}
	}
	return &doc, nil
}

// UpdateDocument updates an existing document.
func (s *SQLiteStorage) UpdateDocument(ctx context.Context, doc *models.Document) error {
	outlineJSON, err := json.Marshal(doc.Outline)
	if err != nil {
		return fmt.Errorf("failed to marshal outline: %w", err)
	}

	doc.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET filename = ?, mime_type = ?, status = ?, error = ?, language = ?, outline = ?,
		 updated_at = ?, source_path = ?, source_mtime = ?, source_size = ?
		 WHERE id = ?`,
		doc.Filename, doc.MimeType, string(doc.Status), doc.Error, doc.Language,
		string(outlineJSON), doc.UpdatedAt,
		doc.SourcePath, doc.SourceModTime, doc.SourceSize, doc.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", doc.ID)
	}
	return nil
}

// SetDocumentStatus updates only the lifecycle status and error message.
func (s *SQLiteStorage) SetDocumentStatus(ctx context.Context, id string, status models.DocumentStatus, errMsg string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), errMsg, time.Now(), id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// DeleteDocument removes a document by ID.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}

// ListDocuments returns documents with offset and limit, newest first.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

const chunkColumns = `id, document_id, chunk_number, content, start_char, end_char,
	section_type, section_level, stats, quality, embedding_model, embedding_dims, created_at`

func scanChunk(row rowScanner) (*models.Chunk, error) {
	var chunk models.Chunk
	var sectionType, statsJSON, qualityJSON string
	var embeddingModel sql.NullString
	var embeddingDims sql.NullInt64
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.ChunkNumber, &chunk.Content,
		&chunk.StartChar, &chunk.EndChar, &sectionType, &chunk.SectionLevel,
		&statsJSON, &qualityJSON, &embeddingModel, &embeddingDims, &chunk.CreatedAt); err != nil {
		return nil, err
	}
	chunk.SectionType = models.SectionType(sectionType)
	if statsJSON != "" {
		if err := json.Unmarshal([]byte(statsJSON), &chunk.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chunk stats: %w", err)
		}
	}
	if qualityJSON != "" {
		if err := json.Unmarshal([]byte(qualityJSON), &chunk.Quality); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chunk quality: %w", err)
		}
	}
	if embeddingModel.Valid && embeddingModel.String != "" {
		chunk.Embedding = &models.Embedding{
			Model:      embeddingModel.String,
			Dimensions: int(embeddingDims.Int64),
		}
	}
	return &chunk, nil
}

// GetChunk returns a chunk by ID.
func (s *SQLiteStorage) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id,
	)
	chunk, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetChunks returns the chunks for the given IDs. Missing IDs are simply
// absent from the result; callers that care check the returned length.
func (s *SQLiteStorage) GetChunks(ctx context.Context, ids []string) ([]*models.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE id IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// GetChunksByDocumentID returns all chunks for a document ordered by chunk_number.
func (s *SQLiteStorage) GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE document_id = ? ORDER BY chunk_number`,
		docID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// ReplaceChunks deletes existing chunks for the document and inserts the new
// set in one transaction.
func (s *SQLiteStorage) ReplaceChunks(ctx context.Context, docID string, chunks []*models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, docID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (`+chunkColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, chunk := range chunks {
		chunk.CreatedAt = now
		statsJSON, err := json.Marshal(chunk.Stats)
		if err != nil {
			return fmt.Errorf("failed to marshal chunk stats: %w", err)
		}
		qualityJSON, err := json.Marshal(chunk.Quality)
		if err != nil {
			return fmt.Errorf("failed to marshal chunk quality: %w", err)
		}
		var embeddingModel sql.NullString
		var embeddingDims sql.NullInt64
		if chunk.Embedding != nil {
			embeddingModel = sql.NullString{String: chunk.Embedding.Model, Valid: true}
			embeddingDims = sql.NullInt64{Int64: int64(chunk.Embedding.Dimensions), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.DocumentID, chunk.ChunkNumber, chunk.Content,
			chunk.StartChar, chunk.EndChar, string(chunk.SectionType), chunk.SectionLevel,
			string(statsJSON), string(qualityJSON), embeddingModel, embeddingDims, chunk.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteChunksByDocumentID removes all chunks for a document.
func (s *SQLiteStorage) DeleteChunksByDocumentID(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, docID)
	return err
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
