package task

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestKind(t *testing.T) {
	if got := Kind(1); got != "independent" {
		t.Errorf("Kind(1) = %v, want independent", got)
	}
	for _, n := range []int{2, 3, 4} {
		if got := Kind(n); got != "integrated" {
			t.Errorf("Kind(%d) = %v, want integrated", n, got)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "task1_question.txt", "Do you agree or disagree?\n")
	writeFile(t, dir, "task2_question.txt", "Summarize the announcement.")
	writeFile(t, dir, "task2_reading.txt", "The university will close the old gym.")
	writeFile(t, dir, "task2_listening.txt", "  The man disagrees with the plan.  ")
	writeFile(t, dir, "task4_question.txt", "Explain the concept.")
	writeFile(t, dir, "task4_listening.txt", "The professor gives two examples.")

	t.Run("independent task", func(t *testing.T) {
		f, err := Load(dir, 1)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if f.Question != "Do you agree or disagree?" {
			t.Errorf("Question = %q", f.Question)
		}
		if f.Reading != "" || f.Listening != "" {
			t.Errorf("task 1 should have no transcripts, got %q / %q", f.Reading, f.Listening)
		}
	})

	t.Run("integrated task with both stimuli", func(t *testing.T) {
		f, err := Load(dir, 2)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if f.Reading != "The university will close the old gym." {
			t.Errorf("Reading = %q", f.Reading)
		}
		if f.Listening != "The man disagrees with the plan." {
			t.Errorf("Listening = %q, want trimmed", f.Listening)
		}
	})

	t.Run("listening only task", func(t *testing.T) {
		f, err := Load(dir, 4)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if f.Reading != "" {
			t.Errorf("task 4 should have no reading, got %q", f.Reading)
		}
		if f.Listening == "" {
			t.Error("task 4 listening missing")
		}
	})

	t.Run("all gaps reported at once", func(t *testing.T) {
		_, err := Load(dir, 3)
		var merr *MissingFileError
		if !errors.As(err, &merr) {
			t.Fatalf("Load() error = %v, want *MissingFileError", err)
		}
		want := []string{"task3_question.txt", "task3_reading.txt", "task3_listening.txt"}
		if !reflect.DeepEqual(merr.Missing, want) {
			t.Errorf("Missing = %v, want %v", merr.Missing, want)
		}
	})
}

func TestStudentResponses(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "task1_txt")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "alice_20260110_task1.txt", "I think that...\n")
	writeFile(t, sub, "bob_task1.txt", "  In my opinion...  ")
	writeFile(t, sub, "carol_task2.txt", "wrong task, ignored")

	got, err := StudentResponses(dir, 1)
	if err != nil {
		t.Fatalf("StudentResponses() error = %v", err)
	}
	want := map[string]string{
		"alice": "I think that...",
		"bob":   "In my opinion...",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StudentResponses() = %v, want %v", got, want)
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "task1_question.txt", "q")
	writeFile(t, dir, "task4_question.txt", "q")
	writeFile(t, dir, "task4_listening.txt", "l")
	writeFile(t, dir, "task2_question.txt", "q")
	writeFile(t, dir, "task2_reading.txt", "r")
	// task2 listening and all of task3 are absent.

	available, missing := Detect(dir)
	if !reflect.DeepEqual(available, []int{1, 4}) {
		t.Errorf("available = %v, want [1 4]", available)
	}
	if !reflect.DeepEqual(missing[2], []string{"task2_listening.txt"}) {
		t.Errorf("missing[2] = %v", missing[2])
	}
	if len(missing[3]) != 3 {
		t.Errorf("missing[3] = %v, want all three files", missing[3])
	}
}

func TestReadResponses(t *testing.T) {
	dir := t.TempDir()
	content := `{
    "alice": {
        "original_response": "I think so.",
        "feedback": "**Score for Language Use:** 3.0"
    }
}`
	writeFile(t, dir, "task1_responses.json", content)

	resp, err := ReadResponses(dir, 1)
	if err != nil {
		t.Fatalf("ReadResponses() error = %v", err)
	}
	if resp["alice"].OriginalResponse != "I think so." {
		t.Errorf("OriginalResponse = %q", resp["alice"].OriginalResponse)
	}
	if resp["alice"].Feedback == "" {
		t.Error("Feedback empty")
	}

	if _, err := ReadResponses(dir, 2); !os.IsNotExist(err) {
		t.Errorf("ReadResponses(missing) error = %v, want not-exist", err)
	}
}

func TestResponsesPath(t *testing.T) {
	got := ResponsesPath("/work", 3)
	want := filepath.Join("/work", "task3_responses.json")
	if got != want {
		t.Errorf("ResponsesPath() = %q, want %q", got, want)
	}
}

func TestRequiredFiles(t *testing.T) {
	for n, want := range map[int]int{1: 1, 2: 3, 3: 3, 4: 2} {
		if got := len(requiredFiles(n)); got != want {
			t.Errorf("requiredFiles(%d) has %d entries, want %d", n, got, want)
		}
	}
	if requiredFiles(1)[0] != fmt.Sprintf("task%d_question.txt", 1) {
		t.Errorf("question file always required first")
	}
}
