// Package agent contains the generation orchestrator of agentkit.
//
// An Agent ties a model backend, session memory and a tool catalog together:
//
//  1. Every user turn is persisted before anything else happens.
//  2. An ordered chain of resolvers (for example the code-mode orchestrator)
//     may answer the turn directly; the first resolver that produces a value
//     wins and the model is never called.
//  3. Otherwise a prompt is assembled from the system prompt and as many
//     recent session records as fit the token budget (chronological order),
//     the model is called and its answer is persisted.
//
// Agents can checkpoint a session's short-term memory to JSON and restore it
// later, invoke catalog tools directly (recording the call in memory), and be
// exposed as tools themselves (AsTool, Publish) so other agents can delegate
// to them.
package agent
