package projects

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestFormat_MinimalRecordGetsPlaceholders(t *testing.T) {
	got := Format(RawProject{ID: "10000", Key: "PHX", Name: "Phoenix", ProjectTypeKey: "software"})

	want := FormattedProject{
		ID:              "10000",
		Key:             "PHX",
		Name:            "Phoenix",
		Description:     NoDescription,
		ProjectTypeKey:  "software",
		ProjectCategory: NoCategory,
		Lead:            NoLead,
		URL:             NoURL,
		Email:           NoEmail,
		AssigneeType:    DefaultAssignee,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Format() mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, got.LeadAccountID)
	assert.Nil(t, got.Insight)
	assert.Nil(t, got.ArchivedDate)
	assert.Nil(t, got.DeletedBy)
}

func TestFormat_FullRecord(t *testing.T) {
	body := `{
		"id": "10001",
		"key": "ORB",
		"name": "Orbit",
		"description": "Satellite tooling",
		"projectTypeKey": "service_desk",
		"projectCategory": {"id": "10100", "name": "Space"},
		"lead": {"accountId": "5b10a2844c20165700ede21g", "displayName": "Mia Krystof", "active": true},
		"url": "https://orbit.example",
		"email": "orbit@example.com",
		"assigneeType": "PROJECT_LEAD",
		"avatarUrls": {"48x48": "https://acme/avatar/48"},
		"components": [{"id": "1"}, {"id": "2"}],
		"versions": [{"id": "9"}],
		"roles": {"Administrators": "https://acme/role/1", "Developers": "https://acme/role/2", "Viewers": "https://acme/role/3"},
		"insight": {"totalIssueCount": 42, "lastIssueUpdateTime": "2024-01-02T10:00:00.000+0000"},
		"archived": true,
		"archivedDate": "2024-03-01T00:00:00.000+0000",
		"archivedBy": {"accountId": "abc", "displayName": "Ops Bot"}
	}`
	var raw RawProject
	require.NoError(t, json.Unmarshal([]byte(body), &raw))

	got := Format(raw)
	want := FormattedProject{
		ID:              "10001",
		Key:             "ORB",
		Name:            "Orbit",
		Description:     "Satellite tooling",
		ProjectTypeKey:  "service_desk",
		ProjectCategory: "Space",
		Lead:            "Mia Krystof",
		LeadAccountID:   strPtr("5b10a2844c20165700ede21g"),
		URL:             "https://orbit.example",
		Email:           "orbit@example.com",
		AssigneeType:    "PROJECT_LEAD",
		AvatarURLs:      map[string]string{"48x48": "https://acme/avatar/48"},
		Components:      2,
		Versions:        1,
		Roles:           3,
		Insight:         &Insight{TotalIssueCount: 42, LastIssueUpdateTime: "2024-01-02T10:00:00.000+0000"},
		Archived:        true,
		ArchivedDate:    strPtr("2024-03-01T00:00:00.000+0000"),
		ArchivedBy:      &User{AccountID: "abc", DisplayName: "Ops Bot"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Format() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_PartialNestedObjects(t *testing.T) {
	got := Format(RawProject{
		Lead:            &User{AccountID: "acc-1"},
		ProjectCategory: &Category{ID: "1"},
		Description:     "",
	})
	assert.Equal(t, NoLead, got.Lead, "lead without display name")
	require.NotNil(t, got.LeadAccountID)
	assert.Equal(t, "acc-1", *got.LeadAccountID)
	assert.Equal(t, NoCategory, got.ProjectCategory, "category without name")
	assert.Equal(t, NoDescription, got.Description, "empty string counts as absent")
}

func TestFormattedProject_JSONUsesNulls(t *testing.T) {
	data, err := json.Marshal(Format(RawProject{Key: "PHX"}))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	for _, key := range []string{"leadAccountId", "insight", "retentionTillDate", "deletedDate", "deletedBy", "archivedDate", "archivedBy"} {
		v, ok := m[key]
		assert.True(t, ok, "%s should be present", key)
		assert.Nil(t, v, "%s should be null", key)
	}
	assert.Equal(t, false, m["archived"])
	assert.Equal(t, float64(0), m["components"])
	assert.Equal(t, "No lead", m["lead"])
}

func TestFormatAll_PreservesOrder(t *testing.T) {
	got := FormatAll([]RawProject{{Key: "A"}, {Key: "B"}, {Key: "C"}})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{got[0].Key, got[1].Key, got[2].Key})
	assert.Empty(t, FormatAll(nil))
}
