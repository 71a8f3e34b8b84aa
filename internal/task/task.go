// Package task knows the on-disk layout of a TPO speaking task: its
// question, stimulus transcripts, and the directory of per-student response
// transcripts.
package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/esltool/speakgrader/internal/model"
)

// Numbers lists the valid speaking task numbers.
var Numbers = []int{1, 2, 3, 4}

// Files holds the input documents for one task. Reading and Listening are
// empty for task families that do not use them.
type Files struct {
	Number    int
	Question  string
	Reading   string
	Listening string
}

// MissingFileError reports every required input file absent for a task. The
// task is skipped as a whole; other tasks continue.
type MissingFileError struct {
	Task    int
	Missing []string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("task %d: missing files: %s", e.Task, strings.Join(e.Missing, ", "))
}

// Kind returns the task family: task 1 is independent, tasks 2-4 integrated.
func Kind(n int) model.TaskKind {
	if n == 1 {
		return model.TaskIndependent
	}
	return model.TaskIntegrated
}

// requiredFiles lists the input files a task cannot be processed without.
// Tasks 2 and 3 have reading and listening stimuli, task 4 listening only,
// task 1 just the question.
func requiredFiles(n int) []string {
	files := []string{fmt.Sprintf("task%d_question.txt", n)}
	switch n {
	case 2, 3:
		files = append(files,
			fmt.Sprintf("task%d_reading.txt", n),
			fmt.Sprintf("task%d_listening.txt", n))
	case 4:
		files = append(files, fmt.Sprintf("task%d_listening.txt", n))
	}
	return files
}

// Load reads a task's input documents from dir. All required files are
// checked before any is read so a MissingFileError names every gap at once.
func Load(dir string, n int) (Files, error) {
	var missing []string
	for _, name := range requiredFiles(n) {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Files{}, &MissingFileError{Task: n, Missing: missing}
	}

	f := Files{Number: n}
	var err error
	if f.Question, err = readTrimmed(dir, fmt.Sprintf("task%d_question.txt", n)); err != nil {
		return Files{}, err
	}
	if n == 2 || n == 3 {
		if f.Reading, err = readTrimmed(dir, fmt.Sprintf("task%d_reading.txt", n)); err != nil {
			return Files{}, err
		}
	}
	if n >= 2 {
		if f.Listening, err = readTrimmed(dir, fmt.Sprintf("task%d_listening.txt", n)); err != nil {
			return Files{}, err
		}
	}
	return f, nil
}

func readTrimmed(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// StudentResponses discovers and reads the per-student transcripts for a
// task from dir/task{N}_txt. Files follow the {student}_..._task{N}.txt
// convention; the student id is everything before the first underscore.
func StudentResponses(dir string, n int) (map[string]string, error) {
	pattern := filepath.Join(dir, fmt.Sprintf("task%d_txt", n), fmt.Sprintf("*_task%d.txt", n))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob student files: %w", err)
	}

	responses := make(map[string]string, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		id, _, _ := strings.Cut(filepath.Base(path), "_")
		responses[id] = strings.TrimSpace(string(data))
	}
	return responses, nil
}

// Detect checks which tasks have all required input files in dir. Tasks with
// gaps are reported per-task rather than failing the run.
func Detect(dir string) (available []int, missing map[int][]string) {
	missing = make(map[int][]string)
	for _, n := range Numbers {
		var gaps []string
		for _, name := range requiredFiles(n) {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				gaps = append(gaps, name)
			}
		}
		if len(gaps) > 0 {
			missing[n] = gaps
			continue
		}
		available = append(available, n)
	}
	return available, missing
}

// ResponsesPath is the location of the evaluation stage's hand-off file.
func ResponsesPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("task%d_responses.json", n))
}

// ReadResponses loads a task's responses file.
func ReadResponses(dir string, n int) (model.TaskResponses, error) {
	data, err := os.ReadFile(ResponsesPath(dir, n))
	if err != nil {
		return nil, err
	}
	var resp model.TaskResponses
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(ResponsesPath(dir, n)), err)
	}
	return resp, nil
}
