package domain

import "time"

// JobStatus is the posting state of a job.
type JobStatus string

const (
	JobOpen   JobStatus = "OPEN"
	JobClosed JobStatus = "CLOSED"
)

func (s JobStatus) Valid() bool {
	return s == JobOpen || s == JobClosed
}

// Job is a posting owned by a business identity.
type Job struct {
	ID          string    `json:"id"`
	BusinessID  string    `json:"businessId"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	PayRate     float64   `json:"payRate"`
	Status      JobStatus `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// Application is a worker's bid on a job.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	WorkerID    string            `json:"workerId"`
	CoverLetter string            `json:"coverLetter,omitempty"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
}
