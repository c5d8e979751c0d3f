package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_Layouts(t *testing.T) {
	want := time.Date(2026, 3, 4, 10, 11, 12, 0, time.UTC)
	cases := map[string]time.Time{
		`"2026-03-04T10:11:12"`:        want,
		`"2026-03-04T10:11:12.250000"`: want.Add(250 * time.Millisecond),
		`"2026-03-04T10:11:12Z"`:       want,
		`"2026-03-04T12:11:12+02:00"`:  want,
		`"2026-03-04 10:11:12"`:        want,
		`"2026-03-04"`:                 time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
	}
	for raw, expected := range cases {
		t.Run(raw, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(raw), &ts))
			assert.True(t, expected.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_NullAndEmpty(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`""`), &ts))
	assert.True(t, ts.IsZero())
}

func TestTimestamp_RejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
}

func TestAgent_ToleratesUnknownFields(t *testing.T) {
	raw := `{"id":"a1","name":"Ava","role":"support","persona":"kind","language":"en-US",
		"is_active":true,"created_at":"2026-01-01T00:00:00","brand_new_field":{"x":1}}`
	var agent Agent
	require.NoError(t, json.Unmarshal([]byte(raw), &agent))
	assert.Equal(t, "Ava", agent.Name)
	assert.True(t, agent.IsActive)
	assert.True(t, agent.UpdatedAt.IsZero())
}

func TestCampaignDetail_Progress(t *testing.T) {
	detail := CampaignDetail{
		Campaign: Campaign{TotalContacts: 8},
		Stats:    map[string]int{ContactCompleted: 3, ContactPending: 5},
	}
	assert.Equal(t, 38, detail.Progress())

	empty := CampaignDetail{}
	assert.Equal(t, 0, empty.Progress())
}

func TestVoice_Accessors(t *testing.T) {
	var voices []Voice
	require.NoError(t, json.Unmarshal([]byte(`[{"voice_id":"v1","name":"Nova"},{"id":7,"name":"Echo"}]`), &voices))
	require.Len(t, voices, 2)
	assert.Equal(t, "v1", voices[0].ID())
	assert.Equal(t, "Nova", voices[0].Name())
	assert.Equal(t, "7", voices[1].ID())
}

func TestUser_DisplayName(t *testing.T) {
	name := "Grace Hopper"
	assert.Equal(t, "Grace Hopper", User{Email: "g@example.com", FullName: &name}.DisplayName())
	assert.Equal(t, "g@example.com", User{Email: "g@example.com"}.DisplayName())
}

func TestDecision_Valid(t *testing.T) {
	assert.True(t, DecisionApproved.Valid())
	assert.True(t, DecisionRejected.Valid())
	assert.False(t, Decision("maybe").Valid())
}
