package domain

import "strings"

// JobStatus marks whether a posting accepts applications.
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

// Job is a posting. Salary and Experience are display strings.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Salary      string    `json:"salary"`
	Type        string    `json:"type"`
	Experience  string    `json:"experience"`
	Description string    `json:"description"`
	PostedAt    string    `json:"postedAt,omitempty"`
	Status      JobStatus `json:"status"`
}

// Matches reports whether the lower-cased term occurs in the title, company or location.
func (j Job) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(j.Title), term) ||
		strings.Contains(strings.ToLower(j.Company), term) ||
		strings.Contains(strings.ToLower(j.Location), term)
}
