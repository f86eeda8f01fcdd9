package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// toolsCmd lists the registered tools
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List available tools",
	RunE:  listTools,
}

func listTools(cmd *cobra.Command, args []string) error {
	registry, err := buildRegistry(cfg, false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d tool(s)", registry.Count())))
	for _, t := range registry.All() {
		fmt.Fprintf(out, "%s %s\n  %s\n", nameStyle.Render(t.Name), categoryStyle.Render(string(t.Category)), t.Description)
	}
	return nil
}
