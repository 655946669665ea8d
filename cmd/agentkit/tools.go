package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentkit/tool"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:          "tools",
	Short:        "List the tool catalog",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		return printSpecs(cmd.OutOrStdout(), a.agent.Tools().Specs(), toolsJSON)
	},
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "print specs as JSON")
	rootCmd.AddCommand(toolsCmd)
}

func printSpecs(out io.Writer, specs []tool.Spec, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(specs)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, s := range specs {
		fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Description)
	}
	return w.Flush()
}
