package retriever

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/jmorales/normabot/internal/embedder"
	"github.com/jmorales/normabot/internal/passage"
)

// Pgvector retrieves candidates from a Postgres table with a pgvector
// embedding column, ordered by L2 distance.
type Pgvector struct {
	pool  *pgxpool.Pool
	embed embedder.Embedder
}

// NewPgvector connects to Postgres at databaseURL. Connection failures wrap
// ErrUnavailable.
func NewPgvector(ctx context.Context, databaseURL string, embed embedder.Embedder) (*Pgvector, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: creating connection pool: %v", ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: pinging database: %v", ErrUnavailable, err)
	}
	return &Pgvector{pool: pool, embed: embed}, nil
}

// Close releases the connection pool.
func (r *Pgvector) Close() {
	r.pool.Close()
}

// EnsureSchema creates the extension and passages table if missing.
func (r *Pgvector) EnsureSchema(ctx context.Context, dimension int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS passages (
			id        BIGSERIAL PRIMARY KEY,
			doc_id    TEXT NOT NULL,
			title     TEXT NOT NULL DEFAULT '',
			page      INT NOT NULL DEFAULT 0,
			text      TEXT NOT NULL,
			chunk_id  TEXT NOT NULL DEFAULT '',
			embedding vector(%d) NOT NULL
		)`, dimension),
	}
	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts passages with their vectors. Vectors must be in the same
// order as passages.
func (r *Pgvector) Upsert(ctx context.Context, passages []passage.Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("passage count %d does not match vector count %d", len(passages), len(vectors))
	}

	for i, p := range passages {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO passages (doc_id, title, page, text, chunk_id, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.DocID, p.Title, p.Page, p.Text, p.ChunkID, pgvector.NewVector(vectors[i]),
		)
		if err != nil {
			return fmt.Errorf("inserting passage %d: %w", i, err)
		}
	}
	return nil
}

// Search embeds the query and returns up to topK candidates ordered by
// increasing L2 distance.
func (r *Pgvector) Search(ctx context.Context, query string, topK int) ([]Candidate, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	vector, err := r.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT doc_id, title, page, text, chunk_id, embedding <-> $1 AS distance
		 FROM passages
		 ORDER BY embedding <-> $1
		 LIMIT $2`,
		pgvector.NewVector(vector), topK,
	)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var p passage.Passage
		var distance float64
		if err := rows.Scan(&p.DocID, &p.Title, &p.Page, &p.Text, &p.ChunkID, &distance); err != nil {
			return nil, fmt.Errorf("scanning passage row: %w", err)
		}
		candidates = append(candidates, Candidate{
			Passage: p,
			Score:   float32(distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading passage rows: %w", err)
	}

	return candidates, nil
}

// Ensure Pgvector implements Retriever.
var _ Retriever = (*Pgvector)(nil)
