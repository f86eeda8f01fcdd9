package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jiratools/internal/jira"
	"jiratools/internal/logging"
	"jiratools/internal/tools"
)

// SearchPath is the Jira endpoint the tool queries.
const SearchPath = "/rest/api/3/project/search"

// ErrNoClient is reported when the tool is invoked without a Jira client.
var ErrNoClient = errors.New("jira client not configured")

// Search runs one paginated project search and builds the report.
// It issues exactly one GET; a response without values is treated as empty.
func Search(ctx context.Context, getter jira.Getter, filters SearchFilters) (*Report, error) {
	if getter == nil {
		return nil, ErrNoClient
	}

	params := filters.QueryParams()
	start := time.Now()

	var resp searchResponse
	if err := getter.Get(ctx, SearchPath, params, &resp); err != nil {
		return nil, err
	}

	var raw []RawProject
	if resp.Values != nil {
		raw = *resp.Values
	} else {
		logging.ToolsDebug("search_projects: response carried no values, treating as empty")
	}

	report := NewReport(filters.Query, raw, resp.Total)
	logging.Tools("search_projects: %d projects (active=%d archived=%d deleted=%d) in %v",
		len(report.Projects), len(report.Buckets.Active), len(report.Buckets.Archived),
		len(report.Buckets.Deleted), time.Since(start))
	return report, nil
}

// Handle runs a search and renders it. It never fails past its own
// boundary: every error becomes an error result.
func Handle(ctx context.Context, getter jira.Getter, filters SearchFilters) *tools.Result {
	report, err := Search(ctx, getter, filters)
	if err != nil {
		return ErrorResult(err)
	}
	return tools.TextResult(report.Markdown())
}

// ErrorResult converts a search failure into the tool's error result. Jira's
// own error messages are preferred over the Go error text.
func ErrorResult(err error) *tools.Result {
	msg, ok := jira.RemoteMessage(err)
	if !ok {
		msg = err.Error()
	}
	logging.Get(logging.CategoryTools).Warn("search_projects failed: %s", msg)
	return tools.ErrorResult(fmt.Sprintf("Error searching projects: %s", msg))
}

// SearchProjectsTool returns the search_projects tool bound to getter.
func SearchProjectsTool(getter jira.Getter) *tools.Tool {
	return &tools.Tool{
		Name: "search_projects",
		Description: "Search Jira projects with filtering. Returns a markdown report of " +
			"active, archived and deleted projects.",
		Category: tools.CategoryProjects,
		Priority: 70,
		Execute: func(ctx context.Context, args map[string]any) *tools.Result {
			return Handle(ctx, getter, FiltersFromArgs(args))
		},
		Schema: tools.ToolSchema{
			Required: []string{},
			Properties: map[string]tools.Property{
				"query": {
					Type:        "string",
					Description: "Filter by project name or key (case insensitive, partial match)",
				},
				"typeKey": {
					Type:        "string",
					Description: "Project type: software, service_desk or business",
					Enum:        []any{"software", "service_desk", "business"},
				},
				"categoryId": {
					Type:        "integer",
					Description: "Project category ID",
				},
				"action": {
					Type:        "string",
					Description: "Only return projects the user has this permission for",
					Enum:        []any{"view", "browse", "edit", "create"},
				},
				"expand": {
					Type:        "string",
					Description: "Comma-separated extra fields: description, lead, url, projectKeys, issueTypes, insight",
				},
				"status": {
					Type:        "array",
					Description: "Lifecycle states to include: live, archived, deleted",
					Items:       &tools.PropertyItems{Type: "string", Enum: []any{"live", "archived", "deleted"}},
				},
				"properties": {
					Type:        "array",
					Description: "Project property keys to return",
					Items:       &tools.PropertyItems{Type: "string"},
				},
				"propertyQuery": {
					Type:        "string",
					Description: "Project property query, e.g. [thepropertykey].something.nested=1",
				},
				"startAt": {
					Type:        "integer",
					Description: "Index of the first project to return (default: 0)",
					Default:     DefaultStartAt,
				},
				"maxResults": {
					Type:        "integer",
					Description: "Maximum projects per page (default: 50)",
					Default:     DefaultMaxResults,
				},
			},
		},
	}
}

// RegisterAll registers all project tools with the given registry.
func RegisterAll(registry *tools.Registry, getter jira.Getter) error {
	allTools := []*tools.Tool{
		SearchProjectsTool(getter),
	}

	for _, tool := range allTools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
