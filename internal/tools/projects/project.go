package projects

import "encoding/json"

// Placeholders substituted for absent project fields.
const (
	NoDescription      = "No description"
	NoCategory         = "No category"
	NoLead             = "No lead"
	NoURL              = "No URL"
	NoEmail            = "No email"
	DefaultAssignee    = "UNASSIGNED"
	UnknownLifecycleAt = "Unknown"
)

// User is the subset of a Jira user record carried on projects.
type User struct {
	AccountID   string `json:"accountId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Active      bool   `json:"active,omitempty"`
}

// Category is a Jira project category.
type Category struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Insight carries the optional project insight block (expand=insight).
type Insight struct {
	TotalIssueCount     int    `json:"totalIssueCount"`
	LastIssueUpdateTime string `json:"lastIssueUpdateTime,omitempty"`
}

// RawProject is one entry of the search response's values array.
// Everything except the identifiers is optional.
type RawProject struct {
	ID                string                     `json:"id"`
	Key               string                     `json:"key"`
	Name              string                     `json:"name"`
	Description       string                     `json:"description"`
	ProjectTypeKey    string                     `json:"projectTypeKey"`
	ProjectCategory   *Category                  `json:"projectCategory"`
	Lead              *User                      `json:"lead"`
	URL               string                     `json:"url"`
	Email             string                     `json:"email"`
	AssigneeType      string                     `json:"assigneeType"`
	AvatarURLs        map[string]string          `json:"avatarUrls"`
	Components        []json.RawMessage          `json:"components"`
	Versions          []json.RawMessage          `json:"versions"`
	Roles             map[string]json.RawMessage `json:"roles"`
	Insight           *Insight                   `json:"insight"`
	Deleted           bool                       `json:"deleted"`
	RetentionTillDate string                     `json:"retentionTillDate"`
	DeletedDate       string                     `json:"deletedDate"`
	DeletedBy         *User                      `json:"deletedBy"`
	Archived          bool                       `json:"archived"`
	ArchivedDate      string                     `json:"archivedDate"`
	ArchivedBy        *User                      `json:"archivedBy"`
}

// searchResponse is the page returned by /rest/api/3/project/search.
// Values and Total are pointers so absence can be told apart from zero.
type searchResponse struct {
	Values     *[]RawProject `json:"values"`
	Total      *int          `json:"total"`
	StartAt    int           `json:"startAt"`
	MaxResults int           `json:"maxResults"`
	IsLast     bool          `json:"isLast"`
}

// FormattedProject is a RawProject with every absent field replaced by an
// explicit placeholder. Nullable fields stay nil and encode as null.
type FormattedProject struct {
	ID                string            `json:"id"`
	Key               string            `json:"key"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	ProjectTypeKey    string            `json:"projectTypeKey"`
	ProjectCategory   string            `json:"projectCategory"`
	Lead              string            `json:"lead"`
	LeadAccountID     *string           `json:"leadAccountId"`
	URL               string            `json:"url"`
	Email             string            `json:"email"`
	AssigneeType      string            `json:"assigneeType"`
	AvatarURLs        map[string]string `json:"avatarUrls,omitempty"`
	Components        int               `json:"components"`
	Versions          int               `json:"versions"`
	Roles             int               `json:"roles"`
	Insight           *Insight          `json:"insight"`
	Deleted           bool              `json:"deleted"`
	RetentionTillDate *string           `json:"retentionTillDate"`
	DeletedDate       *string           `json:"deletedDate"`
	DeletedBy         *User             `json:"deletedBy"`
	Archived          bool              `json:"archived"`
	ArchivedDate      *string           `json:"archivedDate"`
	ArchivedBy        *User             `json:"archivedBy"`
}

// Format flattens a raw project. Empty strings count as absent.
func Format(p RawProject) FormattedProject {
	fp := FormattedProject{
		ID:                p.ID,
		Key:               p.Key,
		Name:              p.Name,
		Description:       orDefault(p.Description, NoDescription),
		ProjectTypeKey:    p.ProjectTypeKey,
		ProjectCategory:   NoCategory,
		Lead:              NoLead,
		URL:               orDefault(p.URL, NoURL),
		Email:             orDefault(p.Email, NoEmail),
		AssigneeType:      orDefault(p.AssigneeType, DefaultAssignee),
		AvatarURLs:        p.AvatarURLs,
		Components:        len(p.Components),
		Versions:          len(p.Versions),
		Roles:             len(p.Roles),
		Insight:           p.Insight,
		Deleted:           p.Deleted,
		RetentionTillDate: optional(p.RetentionTillDate),
		DeletedDate:       optional(p.DeletedDate),
		DeletedBy:         p.DeletedBy,
		Archived:          p.Archived,
		ArchivedDate:      optional(p.ArchivedDate),
		ArchivedBy:        p.ArchivedBy,
	}
	if p.ProjectCategory != nil && p.ProjectCategory.Name != "" {
		fp.ProjectCategory = p.ProjectCategory.Name
	}
	if p.Lead != nil {
		if p.Lead.DisplayName != "" {
			fp.Lead = p.Lead.DisplayName
		}
		fp.LeadAccountID = optional(p.Lead.AccountID)
	}
	return fp
}

// FormatAll formats every project, preserving order.
func FormatAll(raw []RawProject) []FormattedProject {
	out := make([]FormattedProject, 0, len(raw))
	for _, p := range raw {
		out = append(out, Format(p))
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
