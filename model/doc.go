// Package model defines the provider-agnostic abstraction for language models
// used by agentkit agents.
//
// A Model is an opaque request/response function: it receives the assembled
// prompt (role-tagged messages, system message first) plus optional binary
// attachments and returns the generated text. Vendor adapters live in the
// sub-packages openai (including Ollama), anthropic and gemini so higher
// layers stay decoupled from vendor SDKs. MockModel supports tests and
// examples.
package model
