package projects

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"jiratools/internal/logging"
)

const (
	// DefaultStartAt is the page offset sent when none is given.
	DefaultStartAt = 0
	// DefaultMaxResults is the page size sent when none is given.
	DefaultMaxResults = 50
)

// SearchFilters are the optional search parameters. Zero values mean
// "absent" and are left out of the request, except StartAt and MaxResults
// which fall back to their defaults. Values are never validated.
//
// The Raw fields carry a caller-supplied value for an integer parameter that
// is not an integer ("abc", 1.5). When set they are sent verbatim in place of
// the typed field, leaving rejection to Jira.
type SearchFilters struct {
	Query         string   `json:"query,omitempty"`
	TypeKey       string   `json:"typeKey,omitempty"`
	CategoryID    int64    `json:"categoryId,omitempty"`
	Action        string   `json:"action,omitempty"`
	Expand        string   `json:"expand,omitempty"`
	Status        []string `json:"status,omitempty"`
	Properties    []string `json:"properties,omitempty"`
	PropertyQuery string   `json:"propertyQuery,omitempty"`
	StartAt       int      `json:"startAt,omitempty"`
	MaxResults    int      `json:"maxResults,omitempty"`

	RawCategoryID string `json:"-"`
	RawStartAt    string `json:"-"`
	RawMaxResults string `json:"-"`
}

// QueryParams builds the outbound query: every present filter verbatim plus
// startAt and maxResults, which are always sent.
func (f SearchFilters) QueryParams() url.Values {
	params := url.Values{}
	if f.Query != "" {
		params.Set("query", f.Query)
	}
	if f.TypeKey != "" {
		params.Set("typeKey", f.TypeKey)
	}
	switch {
	case f.RawCategoryID != "":
		params.Set("categoryId", f.RawCategoryID)
	case f.CategoryID != 0:
		params.Set("categoryId", strconv.FormatInt(f.CategoryID, 10))
	}
	if f.Action != "" {
		params.Set("action", f.Action)
	}
	if f.Expand != "" {
		params.Set("expand", f.Expand)
	}
	for _, s := range f.Status {
		params.Add("status", s)
	}
	for _, p := range f.Properties {
		params.Add("properties", p)
	}
	if f.PropertyQuery != "" {
		params.Set("propertyQuery", f.PropertyQuery)
	}

	params.Set("startAt", pageParam(f.RawStartAt, f.StartAt, DefaultStartAt))
	params.Set("maxResults", pageParam(f.RawMaxResults, f.MaxResults, DefaultMaxResults))
	return params
}

func pageParam(raw string, n, def int) string {
	if raw != "" {
		return raw
	}
	if n == 0 {
		n = def
	}
	return strconv.Itoa(n)
}

// FiltersFromArgs reads a loosely-typed argument bag (as decoded from a tool
// call) into SearchFilters. Nothing supplied is dropped: false, 0, "", null
// and empty lists count as absent; every other value is forwarded. Lists given
// for a scalar field are comma-joined, objects are sent as JSON, and a
// non-integer value for an integer field is kept in its Raw field.
func FiltersFromArgs(args map[string]any) SearchFilters {
	var f SearchFilters
	f.Query = stringArg(args, "query")
	f.TypeKey = stringArg(args, "typeKey")
	f.Action = stringArg(args, "action")
	f.Expand = stringArg(args, "expand")
	f.PropertyQuery = stringArg(args, "propertyQuery")
	f.Status = listArg(args, "status")
	f.Properties = listArg(args, "properties")

	f.CategoryID, f.RawCategoryID = intArg(args, "categoryId")

	var n int64
	n, f.RawStartAt = intArg(args, "startAt")
	f.StartAt = int(n)
	n, f.RawMaxResults = intArg(args, "maxResults")
	f.MaxResults = int(n)
	return f
}

// stringArg renders args[key] as the text sent on the wire, or "" if absent.
func stringArg(args map[string]any, key string) string {
	return scalarText(key, args[key])
}

func scalarText(key string, v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return ""
		}
		return v.String()
	case float64:
		if v == 0 || math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v == 0 {
			return ""
		}
		return strconv.Itoa(v)
	case int64:
		if v == 0 {
			return ""
		}
		return strconv.FormatInt(v, 10)
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, scalarText(key, item))
		}
		return strings.Join(parts, ",")
	default:
		data, err := json.Marshal(v)
		if err != nil {
			logging.ToolsDebug("search_projects: cannot encode %s of type %T: %v", key, v, err)
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// intArg returns an integer value, or the verbatim text of a present value
// that is not one.
func intArg(args map[string]any, key string) (int64, string) {
	switch v := args[key].(type) {
	case int:
		return int64(v), ""
	case int64:
		return v, ""
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < 1<<53 {
			return int64(v), ""
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, ""
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n != 0 {
			return n, ""
		}
	}

	raw := stringArg(args, key)
	if raw != "" {
		logging.ToolsDebug("search_projects: forwarding non-integer %s=%q verbatim", key, raw)
	}
	return 0, raw
}

// listArg accepts an array or a single comma-separated string.
func listArg(args map[string]any, key string) []string {
	var raw []string
	switch v := args[key].(type) {
	case nil:
		return nil
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			raw = append(raw, scalarText(key, item))
		}
	default:
		raw = strings.Split(stringArg(args, key), ",")
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
