package projects

import (
	"fmt"
	"strings"
)

const (
	// archivedListLimit and deletedListLimit cap the inactive listings.
	archivedListLimit = 5
	deletedListLimit  = 3

	allProjectsLabel = "All projects"
	noActiveProjects = "No active projects found."
)

const searchTips = "## 🔍 Search Tips\n" +
	"- Use `query` parameter to search by name or key\n" +
	"- Filter by `typeKey` (software, service_desk, business)\n" +
	"- Use `status` parameter (live, archived, deleted)\n" +
	"- Add `expand` parameter for more details (description, lead, url, projectKeys, insight)"

// Report is everything one search produced, ready to render.
type Report struct {
	Query    string             `json:"query"`
	Total    int                `json:"total"`
	Projects []FormattedProject `json:"projects"`
	Buckets  SearchResult       `json:"buckets"`
}

// NewReport formats and partitions raw projects. A missing or zero total
// falls back to the number of projects on the page.
func NewReport(query string, raw []RawProject, total *int) *Report {
	formatted := FormatAll(raw)
	t := len(formatted)
	if total != nil && *total != 0 {
		t = *total
	}
	return &Report{
		Query:    query,
		Total:    t,
		Projects: formatted,
		Buckets:  Partition(formatted),
	}
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var sb strings.Builder

	query := r.Query
	if query == "" {
		query = allProjectsLabel
	}
	active, archived, deleted := r.Buckets.Active, r.Buckets.Archived, r.Buckets.Deleted

	sb.WriteString("# Project Search Results\n\n")
	sb.WriteString("## 📊 Search Summary\n")
	fmt.Fprintf(&sb, "- **Query**: %s\n", query)
	fmt.Fprintf(&sb, "- **Total Found**: %d\n", r.Total)
	fmt.Fprintf(&sb, "- **Showing**: %d projects\n", len(r.Projects))
	fmt.Fprintf(&sb, "- **Active**: %d\n", len(active))
	fmt.Fprintf(&sb, "- **Archived**: %d\n", len(archived))
	fmt.Fprintf(&sb, "- **Deleted**: %d\n\n", len(deleted))

	fmt.Fprintf(&sb, "## 🚀 Active Projects (%d)\n", len(active))
	if len(active) == 0 {
		sb.WriteString(noActiveProjects)
	} else {
		blocks := make([]string, 0, len(active))
		for _, p := range active {
			blocks = append(blocks, activeBlock(p))
		}
		sb.WriteString(strings.Join(blocks, "\n\n"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(inactiveSection("📦 Archived Projects", archived, archivedListLimit, func(p FormattedProject) string {
		return fmt.Sprintf("- **%s** (%s) - Archived: %s", p.Name, p.Key, orUnknown(p.ArchivedDate))
	}))
	sb.WriteString("\n\n")

	sb.WriteString(inactiveSection("🗑️ Deleted Projects", deleted, deletedListLimit, func(p FormattedProject) string {
		return fmt.Sprintf("- **%s** (%s) - Deleted: %s", p.Name, p.Key, orUnknown(p.DeletedDate))
	}))
	sb.WriteString("\n\n")

	sb.WriteString(searchTips)
	return sb.String()
}

func activeBlock(p FormattedProject) string {
	return fmt.Sprintf("### %s (%s)\n"+
		"- **ID**: %s\n"+
		"- **Description**: %s\n"+
		"- **Type**: %s\n"+
		"- **Category**: %s\n"+
		"- **Lead**: %s\n"+
		"- **Components**: %d\n"+
		"- **Versions**: %d\n"+
		"- **Roles**: %d",
		p.Name, p.Key, p.ID, p.Description, p.ProjectTypeKey, p.ProjectCategory,
		p.Lead, p.Components, p.Versions, p.Roles)
}

// inactiveSection lists at most limit projects followed by "... and N more".
// An empty bucket renders as "".
func inactiveSection(title string, projects []FormattedProject, limit int, line func(FormattedProject) string) string {
	if len(projects) == 0 {
		return ""
	}
	shown := projects
	if len(shown) > limit {
		shown = shown[:limit]
	}
	lines := make([]string, 0, len(shown))
	for _, p := range shown {
		lines = append(lines, line(p))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n## %s (%d)\n", title, len(projects))
	sb.WriteString(strings.Join(lines, "\n"))
	if len(projects) > limit {
		fmt.Fprintf(&sb, "\n... and %d more", len(projects)-limit)
	}
	sb.WriteString("\n")
	return sb.String()
}

func orUnknown(s *string) string {
	if s == nil {
		return UnknownLifecycleAt
	}
	return *s
}
