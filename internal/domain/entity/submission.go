package entity

type SubmissionState string

const (
	StateIdle                    SubmissionState = "idle"
	StateValidating              SubmissionState = "validating"
	StateFetchingRecommendations SubmissionState = "fetching_recommendations"
	StateEnrichingResults        SubmissionState = "enriching_results"
	StateDone                    SubmissionState = "done"
	StateError                   SubmissionState = "error"
)

// Submission is the outcome of a single workflow run, handed to the
// presentation layer. Token orders submissions within a session.
type Submission struct {
	ID        string          `json:"id"`
	Session   string          `json:"session,omitempty"`
	Token     int64           `json:"token"`
	State     SubmissionState `json:"state"`
	Title     string          `json:"-"`
	TopK      int             `json:"-"`
	BaseTitle string          `json:"base_title,omitempty"`
	Movies    []EnrichedMovie `json:"movies"`
	Error     string          `json:"error,omitempty"`
}

// NoResults is true for a completed submission whose backend returned an
// empty list. It is false for errored submissions.
func (s *Submission) NoResults() bool {
	return s.State == StateDone && len(s.Movies) == 0
}
