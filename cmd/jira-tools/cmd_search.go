package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jiratools/internal/tools"
)

const searchToolName = "search_projects"

// searchOptions holds the search flags.
type searchOptions struct {
	query         string
	typeKey       string
	categoryID    int64
	action        string
	expand        []string
	status        []string
	properties    []string
	propertyQuery string
	startAt       int
	maxResults    int
	format        string
}

// newSearchCmd runs search_projects once and prints the report
func newSearchCmd() *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search Jira projects",
		Long: `Searches projects visible to the configured account and prints a report
grouped into active, archived and deleted projects.

Examples:
  jira-tools search Phoenix --max-results 10
  jira-tools search --type software --status live,archived
  jira-tools search --expand lead,insight --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.query, "query", "q", "", "Filter by project name or key")
	f.StringVar(&opts.typeKey, "type", "", "Project type: software, service_desk, business")
	f.Int64Var(&opts.categoryID, "category", 0, "Project category ID")
	f.StringVar(&opts.action, "action", "", "Required permission: view, browse, edit, create")
	f.StringSliceVar(&opts.expand, "expand", nil, "Extra fields to expand")
	f.StringSliceVar(&opts.status, "status", nil, "Lifecycle states: live, archived, deleted")
	f.StringSliceVar(&opts.properties, "properties", nil, "Project property keys to return")
	f.StringVar(&opts.propertyQuery, "property-query", "", "Project property query")
	f.IntVar(&opts.startAt, "start-at", 0, "Index of the first project")
	f.IntVar(&opts.maxResults, "max-results", 50, "Page size")
	f.StringVarP(&opts.format, "format", "f", "markdown", "Output format: markdown, plain, json")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string, opts *searchOptions) error {
	format := strings.ToLower(opts.format)
	switch format {
	case "markdown", "plain", "json":
	default:
		return fmt.Errorf("unknown format %q (want markdown, plain or json)", opts.format)
	}

	registry, err := buildRegistry(cfg, true)
	if err != nil {
		return err
	}
	if !registry.Has(searchToolName) {
		return fmt.Errorf("%s is disabled by tools.enabled", searchToolName)
	}

	callArgs := opts.toolArgs(cmd, args)
	logger.Debug("Searching projects", zap.Any("args", callArgs))

	rec, err := registry.Call(cmd.Context(), searchToolName, callArgs)
	if err != nil {
		return err
	}

	if err := printResult(cmd, rec.Result, format); err != nil {
		return err
	}
	if rec.Result.IsError {
		return errResultFailed
	}
	return nil
}

// toolArgs builds the tool argument bag from the flags the user set.
func (o *searchOptions) toolArgs(cmd *cobra.Command, args []string) map[string]any {
	out := map[string]any{}
	f := cmd.Flags()

	query := o.query
	if len(args) == 1 && query == "" {
		query = args[0]
	}
	if query != "" {
		out["query"] = query
	}
	if f.Changed("type") {
		out["typeKey"] = o.typeKey
	}
	if f.Changed("category") {
		out["categoryId"] = o.categoryID
	}
	if f.Changed("action") {
		out["action"] = o.action
	}
	if len(o.expand) > 0 {
		out["expand"] = o.expand
	}
	if len(o.status) > 0 {
		out["status"] = o.status
	}
	if len(o.properties) > 0 {
		out["properties"] = o.properties
	}
	if f.Changed("property-query") {
		out["propertyQuery"] = o.propertyQuery
	}
	if f.Changed("start-at") {
		out["startAt"] = o.startAt
	}
	if f.Changed("max-results") {
		out["maxResults"] = o.maxResults
	}
	return out
}

func printResult(cmd *cobra.Command, res *tools.Result, format string) error {
	out := cmd.OutOrStdout()

	if res.IsError {
		fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(res.Text()))
		if format != "json" {
			return nil
		}
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "plain":
		fmt.Fprintln(out, res.Text())
	default:
		fmt.Fprint(out, renderMarkdown(res.Text()))
	}
	return nil
}

// renderMarkdown renders through glamour, falling back to the raw text.
func renderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		logger.Debug("glamour renderer unavailable", zap.Error(err))
		return md + "\n"
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		logger.Debug("glamour render failed", zap.Error(err))
		return md + "\n"
	}
	return rendered
}
