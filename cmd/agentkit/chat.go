package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/internal/util"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Reads one prompt per line and prints the agent's reply.

Lines starting with a slash are commands:
  /call <tool> <json>   invoke a catalog tool
  /recall <k> <vector>  list k diverse memories near a JSON embedding
  /tools                list the tool catalog
  /checkpoint           print the session checkpoint
  /exit                 leave the session`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		r := &repl{agent: a.agent, sessionID: chatSession, lambda: cfg.MMRLambda}
		err = r.run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		if ferr := a.agent.Flush(context.WithoutCancel(ctx), chatSession); ferr != nil {
			a.logger.Warn("flush failed", "session_id", chatSession, "error", ferr)
		}
		return err
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "cli", "session id")
	rootCmd.AddCommand(chatCmd)
}

// repl is one interactive chat bound to a session.
type repl struct {
	agent     *agent.Agent
	sessionID string
	// lambda is the MMR trade-off used by /recall.
	lambda float32
}

// run drives the REPL until EOF, /exit or ctx cancellation.
func (r *repl) run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := r.command(ctx, line[1:], out)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			if done {
				return nil
			}
			continue
		}

		reply, err := r.agent.Generate(ctx, r.sessionID, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, reply)
	}
}

func (r *repl) command(ctx context.Context, line string, out io.Writer) (bool, error) {
	a, sessionID := r.agent, r.sessionID
	name, rest := util.SplitCommand(line)

	switch name {
	case "exit", "quit":
		return true, nil
	case "tools":
		return false, printSpecs(out, a.Tools().Specs(), false)
	case "checkpoint":
		data, err := a.Checkpoint(sessionID)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, string(data))
		return false, nil
	case "call":
		toolName, raw := util.SplitCommand(rest)
		if toolName == "" {
			return false, goerr.New("usage: /call <tool> <json>")
		}
		args := map[string]any{}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return false, goerr.Wrap(err, "invalid tool arguments", goerr.V("tool", toolName))
			}
		}
		content, err := a.InvokeTool(ctx, sessionID, toolName, args)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, content)
		return false, nil
	case "recall":
		return false, r.recall(ctx, rest, out)
	default:
		return false, goerr.New("unknown command", goerr.V("command", name))
	}
}

// recall prints the k stored records closest to the embedding, re-ranked for
// diversity with the configured lambda.
func (r *repl) recall(ctx context.Context, args string, out io.Writer) error {
	rawK, rawVec := util.SplitCommand(args)
	k, err := strconv.Atoi(rawK)
	if err != nil || k <= 0 || rawVec == "" {
		return goerr.New("usage: /recall <k> <json-vector>")
	}

	var embedding []float32
	if err := json.Unmarshal([]byte(rawVec), &embedding); err != nil {
		return goerr.Wrap(err, "invalid embedding")
	}

	records, err := r.agent.Memory().SearchDiverse(ctx, r.sessionID, embedding, k, r.lambda)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "(no matches)")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(out, "[%s] %s\n", rec.Role, rec.Content)
	}
	return nil
}
