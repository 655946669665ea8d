// Package code implements "code mode": executing small programs that chain
// catalog tools, exposing that capability as the codemode.run_code tool, and
// an orchestrator that lets a model route a prompt to a tool call or a code
// snippet before the agent falls back to ordinary generation.
package code
