package domain

// DashboardStats summarizes the collections for administrators.
type DashboardStats struct {
	TotalUsers int `json:"totalUsers"`
	TotalJobs  int `json:"totalJobs"`
	ActiveJobs int `json:"activeJobs"`
	ClosedJobs int `json:"closedJobs"`
}
