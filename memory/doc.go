// Package memory contains the session memory engine and the process-local
// MemoryStore implementations. Durable backends live in sub-packages.
//
// SessionMemory owns a bounded, per-session short-term cache and delegates
// durability to any core.MemoryStore. The store interface and MemoryRecord type
// reside in the core package; select an implementation at wiring time:
//
//   - InMemoryStore (process local, tests and demos)
//   - CachedStore (ristretto search-result cache in front of another store)
//   - memory/postgres, memory/sqlite, memory/chromem, memory/firestore
//
// CosineSimilarity and MMRRerank are pure helpers for diversity-aware retrieval.
package memory
