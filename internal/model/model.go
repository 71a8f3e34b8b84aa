package model

import "time"

// TaskKind distinguishes the two TOEFL speaking task families. Task 1 is
// independent; tasks 2-4 are integrated and come with stimulus transcripts.
type TaskKind string

const (
	TaskIndependent TaskKind = "independent"
	TaskIntegrated  TaskKind = "integrated"
)

// Rubric maps discrete score levels to their descriptive text. Rubrics are
// built once at startup and never mutated.
type Rubric struct {
	Name   string
	Levels map[float64]string
}

// EvaluationRequest carries everything the evaluator needs to grade one
// student's response to one task.
type EvaluationRequest struct {
	TaskNumber             int
	StudentID              string
	Question               string
	StudentResponse        string
	LanguageUseRubric      Rubric
	TopicDevelopmentRubric *Rubric
	ReadingTranscript      string
	ListeningTranscript    string
}

// ParsedFeedback holds the structured fields extracted from the evaluator's
// free-text output for one student.
type ParsedFeedback struct {
	LanguageUseScore      float64
	TopicDevelopmentScore *float64
	RevisedText           string
	OriginalText          string
}

// OverallScore is the mean of the two rubric scores, or the language-use
// score alone when topic development was not graded.
func (p ParsedFeedback) OverallScore() float64 {
	if p.TopicDevelopmentScore == nil {
		return p.LanguageUseScore
	}
	return (p.LanguageUseScore + *p.TopicDevelopmentScore) / 2.0
}

// StudentTaskScore is one student's overall score on one task.
type StudentTaskScore struct {
	StudentID    string
	TaskNumber   int
	OverallScore float64
}

// StudentTotal is a student's cross-task raw total and its scaled TOEFL
// score. ScaledScore is nil when the raw total falls outside the conversion
// table's domain.
type StudentTotal struct {
	StudentID   string
	RawTotal    float64
	ScaledScore *float64
}

// StudentResponse is one entry in the task responses file: the transcript as
// submitted plus the raw, unparsed evaluator output.
type StudentResponse struct {
	OriginalResponse string `json:"original_response"`
	Feedback         string `json:"feedback"`
}

// TaskResponses is the wire format of task{N}_responses.json, keyed by
// student identifier. Every downstream consumer (scoring, reports, posts,
// audio) reads this schema, so it must remain stable.
type TaskResponses map[string]StudentResponse

// EvaluationRun is one archived evaluator invocation.
type EvaluationRun struct {
	ID                    int64
	TaskNumber            int
	StudentID             string
	Model                 string
	OriginalResponse      string
	Feedback              string
	LanguageUseScore      *float64
	TopicDevelopmentScore *float64
	OverallScore          *float64
	CreatedAt             time.Time
}

// BatchConfig holds runtime evaluation parameters set via CLI flags.
type BatchConfig struct {
	Dir         string        // working directory for task files and outputs
	Concurrency int           // max in-flight evaluator calls
	Timeout     time.Duration // per-request deadline
}
