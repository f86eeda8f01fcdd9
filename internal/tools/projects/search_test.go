package projects

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"jiratools/internal/jira"
	"jiratools/internal/tools"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeGetter records calls and answers with a canned body or error.
type fakeGetter struct {
	mu     sync.Mutex
	calls  int
	path   string
	params url.Values
	body   string
	err    error
}

func (f *fakeGetter) Get(ctx context.Context, path string, params url.Values, out any) error {
	f.mu.Lock()
	f.calls++
	f.path = path
	f.params = params
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.body), out)
}

func newJiraServer(t *testing.T, h http.HandlerFunc) *jira.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	hc := &http.Client{Transport: &http.Transport{}, Timeout: 5 * time.Second}
	t.Cleanup(func() {
		hc.CloseIdleConnections()
		ts.Close()
	})
	c, err := jira.NewClient(jira.Options{BaseURL: ts.URL, Email: "dev@acme.test", APIToken: "tok", HTTPClient: hc})
	require.NoError(t, err)
	return c
}

func TestHandle_PhoenixScenario(t *testing.T) {
	var (
		mu       sync.Mutex
		gotPath  string
		gotQuery url.Values
	)
	client := newJiraServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"startAt": 0, "maxResults": 10, "total": 3, "isLast": true,
			"values": [
				{"id": "1", "key": "PHX", "name": "Phoenix", "projectTypeKey": "software"},
				{"id": "2", "key": "PHW", "name": "Phoenix Web", "projectTypeKey": "software"},
				{"id": "3", "key": "PHO", "name": "Phoenix Old", "archived": true, "archivedDate": "2023-12-01T00:00:00.000+0000"}
			]
		}`))
	})

	res := Handle(context.Background(), client, SearchFilters{Query: "Phoenix", MaxResults: 10})

	require.NotNil(t, res)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, tools.ContentTypeText, res.Content[0].Type)

	text := res.Text()
	for _, want := range []string{
		"- **Query**: Phoenix",
		"- **Total Found**: 3",
		"- **Showing**: 3 projects",
		"- **Active**: 2",
		"- **Archived**: 1",
		"- **Deleted**: 0",
		"- **Phoenix Old** (PHO) - Archived: 2023-12-01T00:00:00.000+0000",
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "... and")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, SearchPath, gotPath)
	assert.Equal(t, url.Values{"query": {"Phoenix"}, "startAt": {"0"}, "maxResults": {"10"}}, gotQuery)
}

func TestHandle_EmptyValues(t *testing.T) {
	g := &fakeGetter{body: `{"values": [], "total": 0}`}

	res := Handle(context.Background(), g, SearchFilters{})

	assert.False(t, res.IsError)
	text := res.Text()
	assert.Contains(t, text, "- **Active**: 0")
	assert.Contains(t, text, "- **Archived**: 0")
	assert.Contains(t, text, "- **Deleted**: 0")
	assert.Contains(t, text, "No active projects found.")
	assert.Equal(t, 1, g.calls)
	assert.Equal(t, SearchPath, g.path)
	assert.Equal(t, "50", g.params.Get("maxResults"))
}

func TestHandle_MissingValuesIsTolerated(t *testing.T) {
	g := &fakeGetter{body: `{"total": 12}`}

	res := Handle(context.Background(), g, SearchFilters{Query: "x"})

	assert.False(t, res.IsError)
	assert.Contains(t, res.Text(), "- **Total Found**: 12")
	assert.Contains(t, res.Text(), "- **Showing**: 0 projects")
}

func TestHandle_RemoteErrorMessages(t *testing.T) {
	client := newJiraServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessages": ["Project type is invalid"], "errors": {}}`))
	})

	res := Handle(context.Background(), client, SearchFilters{TypeKey: "spaceship"})

	assert.True(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "Error searching projects: Project type is invalid", res.Content[0].Text)
}

func TestHandle_RemoteErrorMessagesWithStructuredFieldErrors(t *testing.T) {
	client := newJiraServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessages":["Project type is invalid"],"errors":{"typeKey":{"reason":"bad"}}}`))
	})

	res := Handle(context.Background(), client, SearchFilters{TypeKey: "spaceship"})

	assert.True(t, res.IsError)
	assert.Equal(t, "Error searching projects: Project type is invalid", res.Text())
}

func TestHandle_RemoteErrorMessagesJoined(t *testing.T) {
	g := &fakeGetter{err: &jira.APIError{StatusCode: 400, ErrorMessages: []string{"first", "second"}}}

	res := Handle(context.Background(), g, SearchFilters{})

	assert.True(t, res.IsError)
	assert.Equal(t, "Error searching projects: first, second", res.Text())
}

func TestHandle_RemoteErrorWithoutMessagesFallsBack(t *testing.T) {
	client := newJiraServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	res := Handle(context.Background(), client, SearchFilters{})

	assert.True(t, res.IsError)
	assert.Equal(t, "Error searching projects: request failed with status code 401", res.Text())
}

func TestHandle_TransportFailure(t *testing.T) {
	g := &fakeGetter{err: errors.New("connect ECONNREFUSED 127.0.0.1:443")}

	res := Handle(context.Background(), g, SearchFilters{})

	assert.True(t, res.IsError)
	assert.Equal(t, "Error searching projects: connect ECONNREFUSED 127.0.0.1:443", res.Text())
}

func TestHandle_MalformedBody(t *testing.T) {
	client := newJiraServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	res := Handle(context.Background(), client, SearchFilters{})

	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "Error searching projects: ")
}

func TestHandle_NilGetter(t *testing.T) {
	res := Handle(context.Background(), nil, SearchFilters{})
	assert.True(t, res.IsError)
	assert.Equal(t, "Error searching projects: jira client not configured", res.Text())
}

func TestHandle_ConcurrentCallsAreIndependent(t *testing.T) {
	client := newJiraServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"values": []map[string]any{{"id": q, "key": q, "name": q}},
		})
	})

	var wg sync.WaitGroup
	results := make([]*tools.Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Handle(context.Background(), client, SearchFilters{Query: string(rune('A' + i))})
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		q := string(rune('A' + i))
		require.False(t, res.IsError, res.Text())
		assert.Contains(t, res.Text(), "- **Query**: "+q)
		assert.Contains(t, res.Text(), "### "+q+" ("+q+")")
	}
}

func TestSearch_ReturnsReport(t *testing.T) {
	g := &fakeGetter{body: `{"total": 9, "values": [{"key": "A"}, {"key": "B", "deleted": true}]}`}

	report, err := Search(context.Background(), g, SearchFilters{})
	require.NoError(t, err)
	assert.Equal(t, 9, report.Total)
	assert.Len(t, report.Projects, 2)
	assert.Len(t, report.Buckets.Active, 1)
	assert.Len(t, report.Buckets.Deleted, 1)
}

func TestSearchProjectsTool_ThroughRegistry(t *testing.T) {
	g := &fakeGetter{body: `{"values": [{"id": "1", "key": "PHX", "name": "Phoenix"}]}`}
	reg := tools.NewRegistry()
	require.NoError(t, RegisterAll(reg, g))

	tool := reg.Get("search_projects")
	require.NotNil(t, tool)
	assert.Equal(t, tools.CategoryProjects, tool.Category)
	assert.Empty(t, tool.Schema.Required)
	assert.Contains(t, tool.Schema.Properties, "propertyQuery")

	rec, err := reg.Call(context.Background(), "search_projects", map[string]any{
		"query":      "Phoenix",
		"maxResults": float64(10),
		"status":     []any{"live"},
	})
	require.NoError(t, err)
	assert.True(t, rec.IsSuccess())
	assert.Contains(t, rec.Result.Text(), "### Phoenix (PHX)")
	assert.Equal(t, "10", g.params.Get("maxResults"))
	assert.Equal(t, []string{"live"}, g.params["status"])
}

func TestRegisterAll_Duplicate(t *testing.T) {
	reg := tools.NewRegistry()
	require.NoError(t, RegisterAll(reg, nil))
	assert.ErrorIs(t, RegisterAll(reg, nil), tools.ErrToolAlreadyRegistered)
}
