// Package firestore implements core.MemoryStore on Google Cloud Firestore.
// Similarity search uses Firestore's native vector search (FindNearest) and
// needs a vector index on the embedding field filtered by session_id.
package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/hupe1980/agentkit/core"
)

// DefaultCollection holds memory records unless Options.Collection is set.
const DefaultCollection = "memories"

// Options configures the store.
type Options struct {
	Collection string
}

// Store persists one document per record, keyed by record id.
type Store struct {
	client     *firestore.Client
	collection string
}

// Open connects to the given project and database ("(default)" when empty).
func Open(ctx context.Context, projectID, databaseID string, optFns ...func(o *Options)) (*Store, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}
	return New(client, optFns...), nil
}

// New wraps an existing client.
func New(client *firestore.Client, optFns ...func(o *Options)) *Store {
	opts := Options{Collection: DefaultCollection}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{client: client, collection: opts.Collection}
}

type document struct {
	ID         string             `firestore:"id"`
	SessionID  string             `firestore:"session_id"`
	Role       string             `firestore:"role"`
	Content    string             `firestore:"content"`
	Importance float64            `firestore:"importance"`
	Timestamp  time.Time          `firestore:"timestamp"`
	Metadata   map[string]string  `firestore:"metadata,omitempty"`
	Embedding  firestore.Vector32 `firestore:"embedding,omitempty"`
}

func toDocument(r core.MemoryRecord) document {
	doc := document{
		ID:         r.ID.String(),
		SessionID:  r.SessionID,
		Role:       string(r.Role),
		Content:    r.Content,
		Importance: float64(r.Importance),
		Timestamp:  r.Timestamp.UTC(),
	}
	if len(r.Metadata) > 0 {
		doc.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			doc.Metadata[k] = v
		}
	}
	if r.HasEmbedding() {
		doc.Embedding = append(firestore.Vector32(nil), r.Embedding...)
	}
	return doc
}

func (d document) record() (core.MemoryRecord, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return core.MemoryRecord{}, goerr.Wrap(err, "invalid record id", goerr.V("id", d.ID))
	}
	rec := core.MemoryRecord{
		ID:         id,
		SessionID:  d.SessionID,
		Role:       core.Role(d.Role),
		Content:    d.Content,
		Importance: float32(d.Importance),
		Timestamp:  d.Timestamp,
		Metadata:   d.Metadata,
	}
	if len(d.Embedding) > 0 {
		rec.Embedding = []float32(d.Embedding)
	}
	return rec, nil
}

// Store writes the record document, replacing an earlier version.
func (s *Store) Store(ctx context.Context, record core.MemoryRecord) error {
	doc := toDocument(record)
	if _, err := s.client.Collection(s.collection).Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to write record", goerr.V("record_id", doc.ID), goerr.V("session_id", record.SessionID))
	}
	return nil
}

// Retrieve returns up to limit records of the session, most recent first.
func (s *Store) Retrieve(ctx context.Context, sessionID string, limit int) ([]core.MemoryRecord, error) {
	if limit <= 0 {
		return []core.MemoryRecord{}, nil
	}
	q := s.client.Collection(s.collection).
		Where("session_id", "==", sessionID).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit)
	return collect(q.Documents(ctx), sessionID)
}

// Search returns the limit nearest records of the session by cosine distance.
func (s *Store) Search(ctx context.Context, sessionID string, queryEmbedding []float32, limit int) ([]core.MemoryRecord, error) {
	if limit <= 0 || len(queryEmbedding) == 0 {
		return []core.MemoryRecord{}, nil
	}
	vq := s.client.Collection(s.collection).
		Where("session_id", "==", sessionID).
		FindNearest("embedding", firestore.Vector32(queryEmbedding), limit, firestore.DistanceMeasureCosine, nil)
	return collect(vq.Documents(ctx), sessionID)
}

// Flush is a no-op; every write is committed by Store.
func (s *Store) Flush(context.Context) error { return nil }

// Close closes the client.
func (s *Store) Close() error { return s.client.Close() }

func collect(iter *firestore.DocumentIterator, sessionID string) ([]core.MemoryRecord, error) {
	defer iter.Stop()

	out := []core.MemoryRecord{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read records", goerr.V("session_id", sessionID))
		}

		var doc document
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode record", goerr.V("doc_id", snap.Ref.ID))
		}
		rec, err := doc.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

var _ core.MemoryStore = (*Store)(nil)
