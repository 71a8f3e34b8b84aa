package store

import (
	"testing"

	"github.com/esltool/speakgrader/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr(v float64) *float64 { return &v }

func TestRecordAndListRuns(t *testing.T) {
	s := newTestStore(t)

	first := model.EvaluationRun{
		TaskNumber:       1,
		StudentID:        "alice",
		Model:            "gpt-4o-mini",
		OriginalResponse: "first try",
		Feedback:         "**Score for Language Use:** 3.0",
		LanguageUseScore: ptr(3.0),
		OverallScore:     ptr(3.0),
	}
	if _, err := s.RecordRun(first); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	second := first
	second.OriginalResponse = "second try"
	second.TaskNumber = 2
	id, err := s.RecordRun(second)
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if id == 0 {
		t.Error("RecordRun() returned zero id")
	}

	runs, err := s.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns(0) error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].OriginalResponse != "second try" {
		t.Errorf("runs not newest first: %q", runs[0].OriginalResponse)
	}
	if runs[0].LanguageUseScore == nil || *runs[0].LanguageUseScore != 3.0 {
		t.Errorf("LanguageUseScore = %v, want 3", runs[0].LanguageUseScore)
	}
	if runs[0].TopicDevelopmentScore != nil {
		t.Errorf("TopicDevelopmentScore = %v, want nil", *runs[0].TopicDevelopmentScore)
	}

	task1, err := s.ListRuns(1)
	if err != nil {
		t.Fatalf("ListRuns(1) error = %v", err)
	}
	if len(task1) != 1 || task1[0].TaskNumber != 1 {
		t.Errorf("ListRuns(1) = %+v, want the single task-1 run", task1)
	}
}

func TestLatestResponses(t *testing.T) {
	s := newTestStore(t)

	for _, resp := range []string{"old answer", "new answer"} {
		_, err := s.RecordRun(model.EvaluationRun{
			TaskNumber:       1,
			StudentID:        "alice",
			OriginalResponse: resp,
			Feedback:         "fb " + resp,
		})
		if err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}
	if _, err := s.RecordRun(model.EvaluationRun{TaskNumber: 1, StudentID: "bob", OriginalResponse: "bob answer"}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	responses, err := s.LatestResponses(1)
	if err != nil {
		t.Fatalf("LatestResponses() error = %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("len(responses) = %d, want 2", len(responses))
	}
	if responses["alice"].OriginalResponse != "new answer" {
		t.Errorf("alice = %q, want the most recent run", responses["alice"].OriginalResponse)
	}
}

func TestRunCount(t *testing.T) {
	s := newTestStore(t)
	count, err := s.RunCount()
	if err != nil {
		t.Fatalf("RunCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("RunCount() = %d, want 0", count)
	}
	if _, err := s.RecordRun(model.EvaluationRun{TaskNumber: 1, StudentID: "alice"}); err != nil {
		t.Fatal(err)
	}
	if count, _ = s.RunCount(); count != 1 {
		t.Errorf("RunCount() = %d, want 1", count)
	}
}
