// Package store archives evaluator runs in sqlite so past gradings can be
// inspected and re-exported without spending API calls again. The archive is
// optional; the responses JSON file remains the hand-off format.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/esltool/speakgrader/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS evaluation_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_number INTEGER NOT NULL,
		student_id TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		original_response TEXT NOT NULL DEFAULT '',
		feedback TEXT NOT NULL DEFAULT '',
		language_use_score REAL,
		topic_development_score REAL,
		overall_score REAL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_task_student
		ON evaluation_runs (task_number, student_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun archives one evaluator invocation.
func (s *Store) RecordRun(run model.EvaluationRun) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO evaluation_runs
		 (task_number, student_id, model, original_response, feedback,
		  language_use_score, topic_development_score, overall_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.TaskNumber, run.StudentID, run.Model, run.OriginalResponse, run.Feedback,
		run.LanguageUseScore, run.TopicDevelopmentScore, run.OverallScore, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRuns returns archived runs, newest first. taskNumber 0 means all tasks.
func (s *Store) ListRuns(taskNumber int) ([]model.EvaluationRun, error) {
	query := `SELECT id, task_number, student_id, model, original_response, feedback,
	                 language_use_score, topic_development_score, overall_score, created_at
	          FROM evaluation_runs`
	var args []any
	if taskNumber != 0 {
		query += ` WHERE task_number = ?`
		args = append(args, taskNumber)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.EvaluationRun
	for rows.Next() {
		var r model.EvaluationRun
		if err := rows.Scan(&r.ID, &r.TaskNumber, &r.StudentID, &r.Model, &r.OriginalResponse,
			&r.Feedback, &r.LanguageUseScore, &r.TopicDevelopmentScore, &r.OverallScore, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestResponses rebuilds the responses wire map for a task from the most
// recent archived run per student.
func (s *Store) LatestResponses(taskNumber int) (model.TaskResponses, error) {
	runs, err := s.ListRuns(taskNumber)
	if err != nil {
		return nil, err
	}
	responses := make(model.TaskResponses)
	for _, r := range runs {
		if _, ok := responses[r.StudentID]; ok {
			continue // runs are newest first
		}
		responses[r.StudentID] = model.StudentResponse{
			OriginalResponse: r.OriginalResponse,
			Feedback:         r.Feedback,
		}
	}
	return responses, nil
}

// RunCount returns the number of archived runs.
func (s *Store) RunCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM evaluation_runs`).Scan(&count)
	return count, err
}
