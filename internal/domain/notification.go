package domain

// NotificationJob is the queued payload for one status e-mail.
// ID and Attempt are queue bookkeeping; Attempt starts at 1.
type NotificationJob struct {
	ID             string            `json:"id"`
	Email          string            `json:"email"`
	Status         ApplicationStatus `json:"status"`
	JobTitle       string            `json:"job_title"`
	UnsubscribeURL string            `json:"unsubscribe_url"`
	Attempt        int               `json:"attempt"`
}
