package domain

import "time"

type Document struct {
	Path      string `json:"path"`
	Filename  string `json:"filename"`
	Extension string `json:"extension"`
	Text      string `json:"-"`
}

type Classification struct {
	Category string `json:"category"`
	Summary  string `json:"summary"`
	Raw      string `json:"raw,omitempty"`
}

type CategoryFolder struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Created bool   `json:"created"`
}

type DescriptionEntry struct {
	Filename string `json:"filename"`
	Category string `json:"category"`
	Text     string `json:"-"`
}

// CompletionRequest is a single role-framed call to the classification service.
type CompletionRequest struct {
	System      string  `json:"system"`
	User        string  `json:"user"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	JSON        bool    `json:"json,omitempty"`
}

type FileStatus string

const (
	FileProcessed FileStatus = "processed"
	FileSkipped   FileStatus = "skipped"
	FileFailed    FileStatus = "failed"
)

const (
	ReasonEmptyText            = "empty_text"
	ReasonExtractionFailed     = "extraction_failed"
	ReasonClassificationFailed = "classification_failed"
	ReasonSourceMissing        = "source_missing"
	ReasonWalkError            = "walk_error"
	ReasonNotRegular           = "not_regular_file"
	ReasonTimeout              = "timeout"
	ReasonPlacementFailed      = "placement_failed"
	ReasonLogFailed            = "log_failed"
)

type FileResult struct {
	Path        string        `json:"path"`
	Status      FileStatus    `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	Category    string        `json:"category,omitempty"`
	Destination string        `json:"destination,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

type RunReport struct {
	RunID      string       `json:"run_id"`
	InputRoot  string       `json:"input_root"`
	OutputRoot string       `json:"output_root"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Results    []FileResult `json:"results"`
}

func (r *RunReport) Add(result FileResult) {
	r.Results = append(r.Results, result)
}

func (r *RunReport) Count(status FileStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Reasons aggregates non-processed results by reason.
func (r *RunReport) Reasons() map[string]int {
	out := make(map[string]int)
	for _, res := range r.Results {
		if res.Status == FileProcessed {
			continue
		}
		out[res.Reason]++
	}
	return out
}
