package retriever

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/jmorales/normabot/internal/embedder"
	"github.com/jmorales/normabot/internal/passage"
)

// Qdrant retrieves candidates from a Qdrant collection. Passage metadata
// travels in the point payload, so no separate passage store join is needed.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	embed      embedder.Embedder
}

// NewQdrant connects to Qdrant at url ("host:port") and uses the given
// collection. Connection failures wrap ErrUnavailable.
func NewQdrant(ctx context.Context, url, collection string, embed embedder.Embedder) (*Qdrant, error) {
	host, portStr, err := net.SplitHostPort(url)
	if err != nil {
		// If no port specified, assume default
		host = url
		portStr = "6334"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid port in qdrant url: %v", ErrUnavailable, err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating qdrant client: %v", ErrUnavailable, err)
	}

	return &Qdrant{client: client, collection: collection, embed: embed}, nil
}

// Close closes the Qdrant client connection.
func (r *Qdrant) Close() error {
	return r.client.Close()
}

// EnsureCollection creates the collection if it does not exist.
func (r *Qdrant) EnsureCollection(ctx context.Context, dimension int) error {
	exists, err := r.client.CollectionExists(ctx, r.collection)
	if err != nil {
		return fmt.Errorf("checking collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = r.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	return nil
}

// Upsert writes passages with their vectors into the collection. Vectors
// must be in the same order as passages.
func (r *Qdrant) Upsert(ctx context.Context, passages []passage.Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("passage count %d does not match vector count %d", len(passages), len(vectors))
	}
	if len(passages) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(passages))
	for i, p := range passages {
		points[i] = &qdrant.PointStruct{
			Id: qdrant.NewIDUUID(uuid.NewString()),
			Payload: map[string]*qdrant.Value{
				"doc_id":   qdrant.NewValueString(p.DocID),
				"title":    qdrant.NewValueString(p.Title),
				"page":     qdrant.NewValueInt(int64(p.Page)),
				"text":     qdrant.NewValueString(p.Text),
				"chunk_id": qdrant.NewValueString(p.ChunkID),
			},
			Vectors: qdrant.NewVectors(vectors[i]...),
		}
	}

	_, err := r.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}
	return nil
}

// Search embeds the query and returns up to topK candidates ordered by the
// collection's cosine similarity (larger = more similar).
func (r *Qdrant) Search(ctx context.Context, query string, topK int) ([]Candidate, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	vector, err := r.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	response, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying qdrant: %w", err)
	}

	candidates := make([]Candidate, 0, len(response))
	for _, point := range response {
		payload := point.Payload
		if payload == nil {
			continue
		}
		p := passage.Passage{
			DocID:   payload["doc_id"].GetStringValue(),
			Title:   payload["title"].GetStringValue(),
			Page:    int(payload["page"].GetIntegerValue()),
			Text:    payload["text"].GetStringValue(),
			ChunkID: payload["chunk_id"].GetStringValue(),
		}
		if p.Text == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Passage: p,
			Score:   point.Score,
		})
	}

	return candidates, nil
}

// Ensure Qdrant implements Retriever.
var _ Retriever = (*Qdrant)(nil)
