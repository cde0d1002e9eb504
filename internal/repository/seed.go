package repository

import (
	"time"

	"github.com/spec-kit/job-search-service/internal/domain"
)

func seedUsers() []domain.User {
	return []domain.User{
		{
			ID:         "1",
			Username:   "John Doe",
			Email:      "john@example.com",
			Password:   "password123",
			Role:       "UI/UX Designer",
			Location:   "New York, USA",
			Experience: "3 Years in UI/UX Design",
		},
		{
			ID:         "2",
			Username:   "Admin",
			Email:      "admin@example.com",
			Password:   "admin123",
			Role:       domain.RoleAdmin,
			Location:   "System",
			Experience: "System Administrator",
		},
	}
}

func seedJobs(now time.Time) []domain.Job {
	postedAt := now.UTC().Format(TimestampLayout)
	return []domain.Job{
		{
			ID:          "1",
			Title:       "Senior UI/UX Designer",
			Company:     "TechCorp",
			Location:    "New York, USA",
			Salary:      "$90,000 - $120,000",
			Type:        "Full-time",
			Experience:  "5+ years",
			Description: "We are looking for an experienced UI/UX Designer...",
			PostedAt:    postedAt,
			Status:      domain.JobStatusActive,
		},
		{
			ID:          "2",
			Title:       "Frontend Developer",
			Company:     "WebSolutions",
			Location:    "San Francisco, USA",
			Salary:      "$80,000 - $100,000",
			Type:        "Full-time",
			Experience:  "3+ years",
			Description: "Join our team as a Frontend Developer...",
			PostedAt:    postedAt,
			Status:      domain.JobStatusActive,
		},
	}
}
