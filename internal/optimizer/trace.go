package optimizer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/afishnamedqwerty/aime/pkg/models"
)

// traceRecord is one self-contained line of the JSONL trace log.
type traceRecord struct {
	Prompt    string  `json:"prompt"`
	Response  string  `json:"response"`
	Score     float64 `json:"score"`
	NewPrompt string  `json:"new_prompt,omitempty"`
}

// prepareTracePath resolves the trace path and creates its parent
// directory on demand.
func prepareTracePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve trace path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", fmt.Errorf("create trace directory: %w", err)
	}
	return abs, nil
}

// persist appends one record to the trace log. Persistence is disabled
// when no trace path is configured.
func (o *Optimizer) persist(example models.TraceExample, newPrompt string) error {
	if o.tracePath == "" {
		return nil
	}
	record := traceRecord{
		Prompt:    example.Prompt,
		Response:  example.Response,
		Score:     example.Score,
		NewPrompt: newPrompt,
	}
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode trace record: %w", err)
	}

	f, err := os.OpenFile(o.tracePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open trace log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append trace record: %w", err)
	}
	return nil
}

// replay rebuilds the window and the best prompt from an existing trace
// log. Malformed lines are skipped with a warning. The best prompt
// prefers the last record carrying an explicit mutated prompt, else the
// prompt of the highest-scoring replayed example.
func (o *Optimizer) replay() error {
	f, err := os.Open(o.tracePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open trace log: %w", err)
	}
	defer f.Close()

	var (
		updatedPrompt string
		bestPrompt    string
		bestScore     = -1.0
	)

	// Records carry whole tool outputs, so lines can be arbitrarily
	// long; read without a token size limit.
	reader := bufio.NewReader(f)
	for {
		line, readErr := reader.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			var record traceRecord
			if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
				o.logger.Log("optimizer: skipping malformed trace line: %.60s", trimmed)
			} else {
				o.push(models.TraceExample{
					Prompt:   record.Prompt,
					Response: record.Response,
					Score:    record.Score,
				})
				if record.NewPrompt != "" {
					updatedPrompt = record.NewPrompt
				} else if record.Score > bestScore {
					bestPrompt = record.Prompt
					bestScore = record.Score
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read trace log: %w", readErr)
		}
	}

	if updatedPrompt != "" {
		o.bestPrompt = updatedPrompt
		o.hasBest = true
	} else if bestScore >= 0 {
		o.bestPrompt = bestPrompt
		o.hasBest = true
	}
	o.composite = CompositeScore(o.window)
	return nil
}
