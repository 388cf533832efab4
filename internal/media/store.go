package media

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

var ErrNotFound = apperr.New(apperr.KindNotFound, "image not found")

// Store keeps image blobs by id.
type Store interface {
	Put(ctx context.Context, contentType string, data []byte) (Blob, error)
	Get(ctx context.Context, id string) (Blob, error)
}

type InMemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{blobs: make(map[string]Blob)}
}

func (s *InMemoryStore) Put(ctx context.Context, contentType string, data []byte) (Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := Blob{ID: uuid.NewString(), ContentType: contentType, Data: append([]byte(nil), data...), CreatedAt: time.Now().UTC()}
	s.blobs[b.ID] = b
	return b, nil
}

func (s *InMemoryStore) Get(ctx context.Context, id string) (Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[id]
	if !ok {
		return Blob{}, ErrNotFound
	}
	return b, nil
}

// PostgresStore keeps blobs in a bytea column.
type PostgresStore struct {
	db *sql.DB
}

const (
	insertBlobQuery = `INSERT INTO media_blobs (id, content_type, data, created_at) VALUES ($1, $2, $3, $4)`
	getBlobQuery    = `SELECT id, content_type, data, created_at FROM media_blobs WHERE id = $1`
)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, contentType string, data []byte) (Blob, error) {
	b := Blob{ID: uuid.NewString(), ContentType: contentType, Data: data, CreatedAt: time.Now().UTC()}
	if _, err := s.db.ExecContext(ctx, insertBlobQuery, b.ID, b.ContentType, b.Data, b.CreatedAt); err != nil {
		return Blob{}, err
	}
	return b, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Blob, error) {
	var b Blob
	err := s.db.QueryRowContext(ctx, getBlobQuery, id).Scan(&b.ID, &b.ContentType, &b.Data, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Blob{}, ErrNotFound
	}
	if err != nil {
		return Blob{}, err
	}
	return b, nil
}
