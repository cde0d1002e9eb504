package domain

// ApplicationStatus tracks review progress of an applied job.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// SavedJobLink bookmarks a job for a user.
type SavedJobLink struct {
	UserID string `json:"userId"`
	JobID  string `json:"jobId"`
}

// AppliedJobLink records an application. AppliedAt is an RFC 3339 timestamp set once.
type AppliedJobLink struct {
	UserID    string            `json:"userId"`
	JobID     string            `json:"jobId"`
	Status    ApplicationStatus `json:"status"`
	AppliedAt string            `json:"appliedAt"`
}
