// Package llm defines the generation-capability boundary: prompt text in,
// text out. Providers return loosely shaped values; everything is
// normalized into a Result at this boundary so downstream code never
// inspects provider shapes.
package llm

import (
	"context"
	"fmt"
)

// Result is the normalized output of a generation call.
type Result struct {
	text string
}

// PlainText wraps literal text.
func PlainText(s string) Result {
	return Result{text: s}
}

// FirstOfSequence takes the first element of a candidate sequence, or an
// empty result when the sequence is empty.
func FirstOfSequence(items []Result) Result {
	if len(items) == 0 {
		return Result{}
	}
	return items[0]
}

// NestedOutput takes the text of the first output of a completion-style
// response.
func NestedOutput(outputs []Result) Result {
	return FirstOfSequence(outputs)
}

// Text returns the normalized text.
func (r Result) Text() string {
	return r.text
}

// Generator is the synchronous generation capability consumed by the
// planner and the optimizer. Calls block until the provider responds;
// there is no timeout beyond what the context carries.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Result, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (Result, error) {
	text, err := f(ctx, prompt)
	if err != nil {
		return Result{}, err
	}
	return PlainText(text), nil
}

// RawGenerator is a provider that returns values in one of several shapes:
// a string, a sequence of candidates, an object with a text field, or an
// object with nested outputs. FromRaw normalizes all of them.
type RawGenerator interface {
	Generate(ctx context.Context, prompt string) (any, error)
}

// FromRaw wraps a RawGenerator, normalizing its return values.
func FromRaw(raw RawGenerator) Generator {
	return rawAdapter{raw: raw}
}

type rawAdapter struct {
	raw RawGenerator
}

func (a rawAdapter) Generate(ctx context.Context, prompt string) (Result, error) {
	v, err := a.raw.Generate(ctx, prompt)
	if err != nil {
		return Result{}, err
	}
	return Normalize(v), nil
}

// Normalize converts a loosely shaped generation value to a Result.
// Unrecognized shapes fall back to their string conversion; Normalize
// never fails.
func Normalize(v any) Result {
	switch val := v.(type) {
	case nil:
		return Result{}
	case Result:
		return val
	case string:
		return PlainText(val)
	case []string:
		if len(val) == 0 {
			return Result{}
		}
		return PlainText(val[0])
	case []any:
		if len(val) == 0 {
			return Result{}
		}
		return Normalize(val[0])
	case map[string]any:
		if text, ok := val["text"]; ok {
			return PlainText(fmt.Sprintf("%v", text))
		}
		if outputs, ok := val["outputs"]; ok {
			if seq, ok := outputs.([]any); ok && len(seq) > 0 {
				return Normalize(seq[0])
			}
		}
		return PlainText(fmt.Sprintf("%v", val))
	default:
		return PlainText(fmt.Sprintf("%v", val))
	}
}
