package projects

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(key string, archived, deleted bool) FormattedProject {
	return Format(RawProject{ID: "id-" + key, Key: key, Name: "Project " + key, Archived: archived, Deleted: deleted})
}

func keys(ps []FormattedProject) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Key)
	}
	return out
}

func TestPartition(t *testing.T) {
	res := Partition([]FormattedProject{
		project("A", false, false),
		project("B", true, false),
		project("C", false, true),
		project("D", true, true),
		project("E", false, false),
	})

	assert.Equal(t, []string{"A", "E"}, keys(res.Active))
	assert.Equal(t, []string{"B", "D"}, keys(res.Archived))
	assert.Equal(t, []string{"C", "D"}, keys(res.Deleted), "archived+deleted lands in both inactive buckets")
}

func TestPartition_IsTotal(t *testing.T) {
	var all []FormattedProject
	for i := 0; i < 16; i++ {
		all = append(all, project(fmt.Sprintf("P%d", i), i%2 == 0, i%3 == 0))
	}
	res := Partition(all)

	seen := map[string]bool{}
	for _, bucket := range [][]FormattedProject{res.Active, res.Archived, res.Deleted} {
		for _, p := range bucket {
			seen[p.Key] = true
		}
	}
	for _, p := range all {
		assert.True(t, seen[p.Key], "%s missing from every bucket", p.Key)
	}
	for _, p := range res.Active {
		assert.False(t, p.Archived || p.Deleted)
	}
}

func TestPartition_EmptyBucketsAreNonNil(t *testing.T) {
	res := Partition(nil)
	assert.NotNil(t, res.Active)
	assert.NotNil(t, res.Archived)
	assert.NotNil(t, res.Deleted)
}

func TestNewReport_TotalFallback(t *testing.T) {
	raw := []RawProject{{Key: "A"}, {Key: "B"}}

	assert.Equal(t, 2, NewReport("", raw, nil).Total)

	zero := 0
	assert.Equal(t, 2, NewReport("", raw, &zero).Total)

	total := 120
	assert.Equal(t, 120, NewReport("", raw, &total).Total)
}

func TestMarkdown_EmptyResult(t *testing.T) {
	md := NewReport("", nil, nil).Markdown()

	for _, want := range []string{
		"# Project Search Results",
		"- **Query**: All projects",
		"- **Total Found**: 0",
		"- **Showing**: 0 projects",
		"- **Active**: 0",
		"- **Archived**: 0",
		"- **Deleted**: 0",
		"## 🚀 Active Projects (0)\nNo active projects found.",
		"## 🔍 Search Tips",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "Archived Projects")
	assert.NotContains(t, md, "Deleted Projects")
}

func TestMarkdown_ActiveProjectDetail(t *testing.T) {
	raw := []RawProject{{
		ID:              "10000",
		Key:             "PHX",
		Name:            "Phoenix",
		ProjectTypeKey:  "software",
		ProjectCategory: &Category{Name: "Core"},
		Lead:            &User{DisplayName: "Ada"},
		Components:      []json.RawMessage{[]byte(`{"id":"1"}`), []byte(`{"id":"2"}`)},
	}}
	md := NewReport("Phoenix", raw, nil).Markdown()

	want := "### Phoenix (PHX)\n" +
		"- **ID**: 10000\n" +
		"- **Description**: No description\n" +
		"- **Type**: software\n" +
		"- **Category**: Core\n" +
		"- **Lead**: Ada\n" +
		"- **Components**: 2\n" +
		"- **Versions**: 0\n" +
		"- **Roles**: 0"
	assert.Contains(t, md, want)
}

func TestMarkdown_ActiveBlocksSeparatedByBlankLine(t *testing.T) {
	md := NewReport("", []RawProject{{Key: "A", Name: "a"}, {Key: "B", Name: "b"}}, nil).Markdown()
	assert.Contains(t, md, "- **Roles**: 0\n\n### b (B)")
}

func TestMarkdown_ArchivedTruncation(t *testing.T) {
	var raw []RawProject
	for i := 0; i < 7; i++ {
		raw = append(raw, RawProject{Key: fmt.Sprintf("AR%d", i), Name: fmt.Sprintf("Arch %d", i), Archived: true})
	}
	raw[0].ArchivedDate = "2024-01-01"

	md := NewReport("", raw, nil).Markdown()

	assert.Contains(t, md, "## 📦 Archived Projects (7)")
	assert.Equal(t, 5, strings.Count(md, " - Archived: "))
	assert.Contains(t, md, "- **Arch 0** (AR0) - Archived: 2024-01-01")
	assert.Contains(t, md, "- **Arch 1** (AR1) - Archived: Unknown")
	assert.NotContains(t, md, "(AR5)")
	assert.Contains(t, md, "- **Arch 4** (AR4) - Archived: Unknown\n... and 2 more\n")
}

func TestMarkdown_ArchivedAtLimitHasNoSuffix(t *testing.T) {
	var raw []RawProject
	for i := 0; i < 5; i++ {
		raw = append(raw, RawProject{Key: fmt.Sprintf("AR%d", i), Archived: true})
	}
	md := NewReport("", raw, nil).Markdown()
	assert.Equal(t, 5, strings.Count(md, " - Archived: "))
	assert.NotContains(t, md, "... and")
}

func TestMarkdown_DeletedTruncation(t *testing.T) {
	var raw []RawProject
	for i := 0; i < 4; i++ {
		raw = append(raw, RawProject{Key: fmt.Sprintf("DL%d", i), Name: fmt.Sprintf("Gone %d", i), Deleted: true, DeletedDate: "2024-05-05"})
	}

	md := NewReport("", raw, nil).Markdown()

	assert.Contains(t, md, "## 🗑️ Deleted Projects (4)")
	assert.Equal(t, 3, strings.Count(md, " - Deleted: 2024-05-05"))
	assert.Contains(t, md, "... and 1 more")
	assert.Contains(t, md, "No active projects found.")
}

func TestMarkdown_PhoenixScenario(t *testing.T) {
	raw := []RawProject{
		{ID: "1", Key: "PHX", Name: "Phoenix"},
		{ID: "2", Key: "PHW", Name: "Phoenix Web"},
		{ID: "3", Key: "PHO", Name: "Phoenix Old", Archived: true},
	}
	md := NewReport("Phoenix", raw, nil).Markdown()

	for _, want := range []string{
		"- **Query**: Phoenix",
		"- **Showing**: 3 projects",
		"- **Active**: 2",
		"- **Archived**: 1",
		"- **Deleted**: 0",
		"## 📦 Archived Projects (1)\n- **Phoenix Old** (PHO) - Archived: Unknown\n",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "... and")
	assert.NotContains(t, md, "Deleted Projects")
}

func TestMarkdown_SectionLayout(t *testing.T) {
	raw := []RawProject{
		{Key: "A", Name: "A"},
		{Key: "B", Name: "B", Archived: true},
		{Key: "C", Name: "C", Deleted: true},
	}
	md := NewReport("", raw, nil).Markdown()

	active := strings.Index(md, "## 🚀 Active Projects")
	archived := strings.Index(md, "## 📦 Archived Projects")
	deleted := strings.Index(md, "## 🗑️ Deleted Projects")
	tips := strings.Index(md, "## 🔍 Search Tips")
	require.True(t, active >= 0 && archived >= 0 && deleted >= 0 && tips >= 0)
	assert.True(t, active < archived && archived < deleted && deleted < tips)
	assert.True(t, strings.HasSuffix(md, "(description, lead, url, projectKeys, insight)"))
}
