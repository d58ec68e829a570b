package dto

import (
	"time"

	"github.com/cesargomez89/synqed/internal/app"
	"github.com/cesargomez89/synqed/internal/domain"
)

// DownloadRequest is the body of POST /api/downloads.
type DownloadRequest struct {
	Metadata *domain.Metadata `json:"metadata,omitempty"`
	ID       string           `json:"id,omitempty"`
	URL      string           `json:"url"`
	Title    string           `json:"title,omitempty"`
}

func (r *DownloadRequest) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateRequiredURL("url", r.URL)...)
	errs = append(errs, validateLength("id", &r.ID, maxIDLength)...)
	errs = append(errs, validateLength("title", &r.Title, maxTitleLength)...)
	if r.Metadata != nil {
		errs = append(errs, validateURL("metadata.thumbnail", &r.Metadata.Thumbnail)...)
		if r.Metadata.Duration < 0 {
			errs = append(errs, ValidationError{Field: "metadata.duration", Message: "cannot be negative"})
		}
	}
	return errs
}

func (r *DownloadRequest) ToNewJob() app.NewJob {
	job := app.NewJob{ID: r.ID, URL: r.URL, Title: r.Title}
	if r.Metadata != nil {
		job.Metadata = *r.Metadata
	}
	return job
}

type JobResponse struct {
	Metadata       domain.Metadata `json:"metadata"`
	ID             string          `json:"id"`
	URL            string          `json:"url"`
	Title          string          `json:"title"`
	Status         string          `json:"status"`
	DetailedStatus string          `json:"detailed_status,omitempty"`
	CreatedAt      string          `json:"created_at"`
	Logs           []string        `json:"logs"`
	Progress       float64         `json:"progress"`
}

func NewJobResponse(j *domain.Job) JobResponse {
	logs := j.Logs
	if logs == nil {
		logs = []string{}
	}
	return JobResponse{
		ID:             j.ID,
		URL:            j.URL,
		Title:          j.Title,
		Status:         string(j.Status),
		DetailedStatus: j.DetailedStatus,
		Progress:       j.Progress,
		Logs:           logs,
		Metadata:       j.Metadata,
		CreatedAt:      j.CreatedAt.Format(time.RFC3339),
	}
}

func NewJobResponses(jobs []*domain.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, NewJobResponse(j))
	}
	return out
}
