package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Accepted ")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, st)

	_, err = ParseStatus("approved")
	assert.Error(t, err)
}

func TestStatusRank(t *testing.T) {
	assert.Less(t, StatusPending.Rank(), StatusAccepted.Rank())
	assert.Less(t, StatusAccepted.Rank(), StatusRejected.Rank())
	assert.Less(t, StatusRejected.Rank(), Status("archived").Rank())
	assert.Equal(t, "Unknown", Status("").Label())
}

func TestMember_DecodesBackendShape(t *testing.T) {
	raw := `{
		"_id": "m1",
		"full_name": "Nguyen Van A",
		"email": "a@b.com",
		"social_links": [{"link": "fb.com/a", "type": "facebook"}, {"link": "https://a.dev", "type": "web"}],
		"school": "HCMUT",
		"major": "CS",
		"skills": ["AI/ML", "IoT"],
		"status": "pending",
		"createdAt": "2025-03-01T09:00:00.000Z"
	}`

	var m Member
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	assert.Equal(t, "Nguyen Van A", m.FullName)
	assert.Equal(t, StatusPending, m.Status)
	assert.True(t, m.HasSkill("IoT"))
	assert.False(t, m.HasSkill("iot"))
	assert.Equal(t, []string{"Facebook: fb.com/a", "https://a.dev"}, m.Contact())
	assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), m.CreatedAt.UTC())
}

func TestSubmission_TeamSize(t *testing.T) {
	s := Submission{Members: []Person{{FullName: "B"}, {FullName: "C"}}}
	assert.Equal(t, 3, s.TeamSize())
}

func TestPost_Cover(t *testing.T) {
	p := Post{}
	assert.Empty(t, p.Cover())
	p.Images = []Media{{URL: "https://cdn/1.png", FileID: "f1"}}
	assert.Equal(t, "https://cdn/1.png", p.Cover())
}
