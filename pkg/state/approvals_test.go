package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vango-go/voicedesk/pkg/core/types"
)

func TestApprovals_DecideRemovesExactlyThatID(t *testing.T) {
	store := NewApprovalsStore()
	store.Dispatch(ActionsLoaded{Actions: []types.PendingAction{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}})

	s := store.Dispatch(ActionDecided{ID: "p2"})
	ids := make([]string, 0, len(s.Pending))
	for _, p := range s.Pending {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"p1", "p3"}, ids)

	s = store.Dispatch(ActionDecided{ID: "missing"})
	assert.Len(t, s.Pending, 2)
}

func TestApprovals_SnapshotUnaffectedByDecision(t *testing.T) {
	store := NewApprovalsStore()
	before := store.Dispatch(ActionsLoaded{Actions: []types.PendingAction{{ID: "p1"}, {ID: "p2"}}})
	store.Dispatch(ActionDecided{ID: "p1"})
	assert.Equal(t, "p1", before.Pending[0].ID)
	assert.True(t, before.Loaded)
}
