package main

import (
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
)

var (
	checkpointSession  string
	checkpointMessages []string
	checkpointRestore  string
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Run scripted turns and print the session checkpoint",
	Long: `Optionally restores a previous checkpoint, sends each --message as a turn
and prints the resulting session checkpoint as JSON.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		if checkpointRestore != "" {
			data, err := os.ReadFile(checkpointRestore)
			if err != nil {
				return goerr.Wrap(err, "failed to read checkpoint", goerr.V("path", checkpointRestore))
			}
			if err := a.agent.Restore(ctx, checkpointSession, data); err != nil {
				return err
			}
		}

		for _, msg := range checkpointMessages {
			if _, err := a.agent.Generate(ctx, checkpointSession, msg); err != nil {
				return err
			}
		}

		data, err := a.agent.Checkpoint(checkpointSession)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return a.agent.Flush(ctx, checkpointSession)
	},
}

func init() {
	checkpointCmd.Flags().StringVarP(&checkpointSession, "session", "s", "cli", "session id")
	checkpointCmd.Flags().StringArrayVarP(&checkpointMessages, "message", "m", nil, "user message to send (repeatable)")
	checkpointCmd.Flags().StringVar(&checkpointRestore, "restore", "", "checkpoint file to restore first")
	rootCmd.AddCommand(checkpointCmd)
}
