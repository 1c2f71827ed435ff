package llm

import (
	"context"
	"strings"
)

// Local is a deterministic echo-style model useful for tests and offline
// runs. It answers with "<model>::<last prompt line>".
type Local struct {
	Model string
}

// NewLocal creates a Local generator with the given model label.
func NewLocal(model string) *Local {
	if model == "" {
		model = "local"
	}
	return &Local{Model: model}
}

// Generate implements Generator.
func (l *Local) Generate(_ context.Context, prompt string) (Result, error) {
	trimmed := strings.TrimSpace(prompt)
	tail := ""
	if trimmed != "" {
		lines := strings.Split(trimmed, "\n")
		tail = lines[len(lines)-1]
	}
	return PlainText(l.Model + "::" + tail), nil
}
