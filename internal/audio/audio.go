// Package audio generates shadowing audio: the revised version of each
// student's response synthesized to speech so the student can practice
// against a corrected reading in a matching voice.
package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/esltool/speakgrader/internal/llm"
)

// Voices by reported gender. Unknown genders are skipped rather than
// guessed.
var voiceByGender = map[string]string{
	"male":   "alloy",
	"female": "nova",
}

// LoadGenderMap reads the student-to-gender mapping file.
func LoadGenderMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return m, nil
}

// VoiceFor maps a gender string to a synthesis voice.
func VoiceFor(gender string) (string, bool) {
	v, ok := voiceByGender[gender]
	return v, ok
}

// OutputPath is where one student's shadowing audio lands.
func OutputPath(dir string, taskNum int, studentID string) string {
	return filepath.Join(dir,
		fmt.Sprintf("task%d_modified_audios", taskNum),
		fmt.Sprintf("task%d_%s_shadowing.wav", taskNum, studentID))
}

// Generate synthesizes one student's revised text and writes the audio
// file, creating the task's audio directory as needed.
func Generate(ctx context.Context, synth llm.Synthesizer, dir string, taskNum int, studentID, text, voice string) error {
	path := OutputPath(dir, taskNum, studentID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}

	stream, err := synth.Synthesize(ctx, text, voice)
	if err != nil {
		return err
	}
	defer stream.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := io.Copy(f, stream); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
