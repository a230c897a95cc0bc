package dto

// RunResultDTO is the outcome of an on-demand agent run.
type RunResultDTO struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}
