package card

import "time"

// Run is the history record of one generation run.
type Run struct {
	ID         string     `json:"id"`
	Template   string     `json:"template"`
	OutputDir  string     `json:"output_dir"`
	FontSize   int        `json:"font_size"`
	Total      int        `json:"total"`
	Written    int        `json:"written"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
