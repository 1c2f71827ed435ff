package planner

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	sentenceEnd   = regexp.MustCompile(`[.?!]\s*`)
	conjunction   = regexp.MustCompile(`(?i)\band\b|\bthen\b|,`)
)

// SplitGoal derives a deterministic list of coarse tasks from a goal.
// Sentences are split on terminators, then on conjunctions and commas;
// the result is trimmed, deduplicated case-insensitively preserving
// first-seen order, and capped to maxTasks.
func SplitGoal(goal string, maxTasks int) []string {
	normalized := strings.TrimSpace(whitespaceRun.ReplaceAllString(goal, " "))
	if normalized == "" {
		return nil
	}

	var segments []string
	for _, fragment := range sentenceEnd.Split(normalized, -1) {
		if frag := strings.TrimSpace(fragment); frag != "" {
			segments = append(segments, frag)
		}
	}
	if len(segments) == 0 {
		segments = append(segments, normalized)
	}

	var tasks []string
	for _, segment := range segments {
		for _, part := range conjunction.Split(segment, -1) {
			if candidate := strings.TrimSpace(part); candidate != "" {
				tasks = append(tasks, candidate)
			}
		}
	}

	seen := make(map[string]bool)
	var unique []string
	for _, task := range tasks {
		canonical := strings.ToLower(task)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		unique = append(unique, task)
	}

	if maxTasks > 0 && len(unique) > maxTasks {
		unique = unique[:maxTasks]
	}
	return unique
}
