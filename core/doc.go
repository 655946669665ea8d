// Package core provides the foundational domain types and contracts shared by
// every agentkit package:
//
//   - MemoryRecord (one immutable conversation turn or tool output)
//   - MemoryStore (durable store / retrieve / search / flush contract)
//   - Message, File and Response (model backend request/response shapes)
//   - AgentState (portable checkpoint snapshot)
//   - Error and the error kinds used across the module
//
// Concrete stores, models and tools live in their own packages and depend on
// these small interfaces so backends can be swapped without import cycles.
package core
