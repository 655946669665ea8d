// Command agentkit is a small CLI around the agentkit runtime: an interactive
// chat REPL, session checkpoints and a listing of the tool catalog.
package main

func main() {
	Execute()
}
