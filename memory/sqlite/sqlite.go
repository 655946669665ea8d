// Package sqlite implements core.MemoryStore on an embedded SQLite database.
// The schema is managed with goose migrations embedded in the binary;
// similarity search ranks a session's embedded records in process.
package sqlite

import (
	"bytes"
	"cmp"
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/memory"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose keeps its configuration in package globals.
var migrateMu sync.Mutex

// Options configures Open.
type Options struct {
	// Logger receives migration progress (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Store is a SQLite backed memory store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and migrates it.
func Open(ctx context.Context, dbPath string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create db directory", goerr.V("path", dbPath))
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", dbPath))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping database", goerr.V("path", dbPath))
	}

	if err := migrate(db, logging.OrNoOp(opts.Logger)); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB, logger logging.Logger) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(&gooseLogger{logger: logger})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return goerr.Wrap(err, "failed to set goose dialect")
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return goerr.Wrap(err, "goose up failed")
	}

	return nil
}

// gooseLogger adapts logging.Logger to goose's Logger interface.
type gooseLogger struct {
	logger logging.Logger
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.logger.Info(fmt.Sprintf(format, v...), "component", "goose")
}

func (g *gooseLogger) Fatalf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	g.logger.Error(msg, "component", "goose")
	panic(msg)
}

// Store upserts record by id.
func (s *Store) Store(ctx context.Context, record core.MemoryRecord) error {
	var metadata sql.NullString
	if len(record.Metadata) > 0 {
		data, err := json.Marshal(record.Metadata)
		if err != nil {
			return goerr.Wrap(err, "failed to encode metadata", goerr.V("record_id", record.ID))
		}
		metadata = sql.NullString{String: string(data), Valid: true}
	}

	var embedding []byte
	if record.HasEmbedding() {
		var err error
		if embedding, err = serializeVector(record.Embedding); err != nil {
			return goerr.Wrap(err, "failed to encode embedding", goerr.V("record_id", record.ID))
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (id, session_id, role, content, importance, timestamp, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			role = excluded.role,
			content = excluded.content,
			importance = excluded.importance,
			timestamp = excluded.timestamp,
			metadata = excluded.metadata,
			embedding = excluded.embedding`,
		record.ID.String(), record.SessionID, string(record.Role), record.Content,
		record.Importance, record.Timestamp.UnixNano(), metadata, embedding)
	if err != nil {
		return goerr.Wrap(err, "failed to store record", goerr.V("record_id", record.ID), goerr.V("session_id", record.SessionID))
	}
	return nil
}

// Retrieve returns up to limit records of the session, most recent first.
func (s *Store) Retrieve(ctx context.Context, sessionID string, limit int) ([]core.MemoryRecord, error) {
	if limit <= 0 {
		return []core.MemoryRecord{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, importance, timestamp, metadata, embedding
		FROM memories WHERE session_id = ?
		ORDER BY timestamp DESC, rowid DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query records", goerr.V("session_id", sessionID))
	}
	return collect(rows)
}

// Search loads the session's embedded records and ranks them by cosine
// similarity to queryEmbedding.
func (s *Store) Search(ctx context.Context, sessionID string, queryEmbedding []float32, limit int) ([]core.MemoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, importance, timestamp, metadata, embedding
		FROM memories WHERE session_id = ? AND embedding IS NOT NULL
		ORDER BY timestamp ASC, rowid ASC`, sessionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query records", goerr.V("session_id", sessionID))
	}
	records, err := collect(rows)
	if err != nil {
		return nil, err
	}

	type scored struct {
		score  float32
		record core.MemoryRecord
	}
	hits := make([]scored, len(records))
	for i, r := range records {
		hits[i] = scored{score: memory.CosineSimilarity(queryEmbedding, r.Embedding), record: r}
	}
	slices.SortStableFunc(hits, func(a, b scored) int { return cmp.Compare(b.score, a.score) })

	n := min(max(limit, 0), len(hits))
	out := make([]core.MemoryRecord, n)
	for i := range n {
		out[i] = hits[i].record
	}
	return out, nil
}

// Flush checkpoints the write-ahead log into the main database file.
func (s *Store) Flush(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return goerr.Wrap(err, "failed to checkpoint wal")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func collect(rows *sql.Rows) ([]core.MemoryRecord, error) {
	defer rows.Close()

	var out []core.MemoryRecord
	for rows.Next() {
		var (
			id, sessionID, role, content string
			importance                   float32
			ts                           int64
			metadata                     sql.NullString
			embedding                    []byte
		)
		if err := rows.Scan(&id, &sessionID, &role, &content, &importance, &ts, &metadata, &embedding); err != nil {
			return nil, goerr.Wrap(err, "failed to scan record")
		}

		uid, err := uuid.Parse(id)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid record id", goerr.V("id", id))
		}
		rec := core.MemoryRecord{
			ID:         uid,
			SessionID:  sessionID,
			Role:       core.Role(role),
			Content:    content,
			Importance: importance,
			Timestamp:  time.Unix(0, ts).UTC(),
		}
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &rec.Metadata); err != nil {
				return nil, goerr.Wrap(err, "invalid metadata", goerr.V("id", id))
			}
		}
		if len(embedding) > 0 {
			if rec.Embedding, err = deserializeVector(embedding); err != nil {
				return nil, goerr.Wrap(err, "invalid embedding", goerr.V("id", id))
			}
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "error iterating records")
	}
	return out, nil
}

// serializeVector converts a float32 slice to a LittleEndian byte slice.
func serializeVector(vec []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deserializeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, goerr.New("embedding blob length is not a multiple of 4", goerr.V("len", len(data)))
	}
	vec := make([]float32, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

var _ core.MemoryStore = (*Store)(nil)
