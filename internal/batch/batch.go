// Package batch runs the evaluator over every student transcript for one
// task and publishes the responses file. Each student's evaluation is
// independent, so the calls run concurrently under a bounded worker pool;
// one bad record never aborts the run.
package batch

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/esltool/speakgrader/internal/fsx"
	"github.com/esltool/speakgrader/internal/llm"
	"github.com/esltool/speakgrader/internal/model"
	"github.com/esltool/speakgrader/internal/rubric"
	"github.com/esltool/speakgrader/internal/task"
)

// Summary records the outcome of one task's evaluation batch.
type Summary struct {
	Task      int
	Evaluated []string
	Skipped   map[string]error
}

// Evaluate grades every student response for one task. Service failures are
// contained per student: the student is recorded in the summary and the
// batch continues. Results are keyed by student id, so ordering across
// workers is irrelevant.
func Evaluate(ctx context.Context, ev llm.Evaluator, files task.Files, students map[string]string, concurrency int) (model.TaskResponses, Summary) {
	if concurrency < 1 {
		concurrency = 1
	}

	summary := Summary{Task: files.Number, Skipped: make(map[string]error)}
	responses := make(model.TaskResponses, len(students))

	langUse := rubric.LanguageUse()
	topicDev := rubric.TopicDevelopment(files.Number)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, concurrency)
	)

	for id, text := range students {
		wg.Add(1)
		go func(id, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			req := model.EvaluationRequest{
				TaskNumber:             files.Number,
				StudentID:              id,
				Question:               files.Question,
				StudentResponse:        text,
				LanguageUseRubric:      langUse,
				TopicDevelopmentRubric: &topicDev,
				ReadingTranscript:      files.Reading,
				ListeningTranscript:    files.Listening,
			}

			slog.Info("evaluating response", "task", files.Number, "student", id)
			raw, err := ev.Evaluate(ctx, req)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("evaluation failed, skipping student", "task", files.Number, "student", id, "error", err)
				summary.Skipped[id] = err
				return
			}
			responses[id] = model.StudentResponse{OriginalResponse: text, Feedback: raw}
			summary.Evaluated = append(summary.Evaluated, id)
		}(id, text)
	}
	wg.Wait()

	sort.Strings(summary.Evaluated)
	return responses, summary
}

// WriteResponses publishes the responses file atomically: the batch is fully
// materialized in memory and renamed into place, never streamed.
func WriteResponses(path string, responses model.TaskResponses) error {
	data, err := json.MarshalIndent(responses, "", "    ")
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(path, append(data, '\n'))
}
