package student

import "context"

// State is one entry of the student state catalog.
type State struct {
	State int    `json:"state"`
	Name  string `json:"name"`
}

// Service is the remote student service used by the panel.
type Service interface {
	GetStates(ctx context.Context) ([]State, error)
	GetTgAdmins(ctx context.Context) ([]string, error)
	ChangeState(ctx context.Context, studentID, stateID int) error
}
