package state

import "github.com/vango-go/voicedesk/pkg/core/types"

type ApprovalsState struct {
	Pending []types.PendingAction
	Loaded  bool
}

// ApprovalsAction is implemented by the approval queue actions below.
type ApprovalsAction interface{ approvalsAction() }

type ActionsLoaded struct{ Actions []types.PendingAction }

// ActionDecided removes the decided action from the queue.
type ActionDecided struct{ ID string }

func (ActionsLoaded) approvalsAction() {}
func (ActionDecided) approvalsAction() {}

func NewApprovalsStore() *Store[ApprovalsState, ApprovalsAction] {
	return New(ApprovalsState{}, ReduceApprovals)
}

func ReduceApprovals(s ApprovalsState, action ApprovalsAction) ApprovalsState {
	switch a := action.(type) {
	case ActionsLoaded:
		s.Pending = append([]types.PendingAction(nil), a.Actions...)
		s.Loaded = true
	case ActionDecided:
		kept := make([]types.PendingAction, 0, len(s.Pending))
		for _, pending := range s.Pending {
			if pending.ID != a.ID {
				kept = append(kept, pending)
			}
		}
		s.Pending = kept
	}
	return s
}
