package dto

import (
	"github.com/spec-kit/job-search-service/internal/domain"
	"github.com/spec-kit/job-search-service/internal/state"
)

// SessionResponse exposes the session cache to clients.
type SessionResponse struct {
	User        *UserResponse           `json:"user"`
	Loading     bool                    `json:"loading"`
	SavedJobs   []domain.SavedJobLink   `json:"savedJobs"`
	AppliedJobs []domain.AppliedJobLink `json:"appliedJobs"`
}

// NewSessionResponse converts a snapshot.
func NewSessionResponse(snap state.Snapshot) SessionResponse {
	resp := SessionResponse{
		Loading:     snap.Loading(),
		SavedJobs:   snap.SavedJobs,
		AppliedJobs: snap.AppliedJobs,
	}
	if snap.CurrentUser != nil {
		u := NewUserResponse(snap.CurrentUser)
		resp.User = &u
	}
	return resp
}

// LinkResponse reports whether a save/apply inserted a new row.
type LinkResponse struct {
	JobID    string `json:"jobId"`
	Inserted bool   `json:"inserted"`
}
