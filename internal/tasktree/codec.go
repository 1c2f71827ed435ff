package tasktree

import (
	"regexp"
	"strings"

	"github.com/afishnamedqwerty/aime/internal/logging"
	"github.com/afishnamedqwerty/aime/pkg/models"
)

// Checklist markers, one per status.
const (
	markerPending    = "[ ]"
	markerInProgress = "[-]"
	markerComplete   = "[x]"
	markerFailed     = "[!]"
)

var checklistLine = regexp.MustCompile(`^(\s*)- \[(.|\s)\] (.+)$`)

// ToText serializes the forest as a text checklist: one line per reachable
// task, indented four spaces per depth level, with a status marker.
// Re-parsing the output reproduces identical structure and statuses.
func (t *Tree) ToText() string {
	var lines []string
	for _, id := range t.rootOrder {
		t.dumpBranch(id, 0, &lines)
	}
	return strings.Join(lines, "\n")
}

func (t *Tree) dumpBranch(id int, depth int, lines *[]string) {
	node, ok := t.tasks[id]
	if !ok {
		return
	}
	marker := markerPending
	switch node.Status {
	case models.TaskStatusInProgress:
		marker = markerInProgress
	case models.TaskStatusComplete:
		marker = markerComplete
	case models.TaskStatusFailed:
		marker = markerFailed
	}
	*lines = append(*lines, strings.Repeat("    ", depth)+"- "+marker+" "+node.Description)
	for _, childID := range node.Children {
		t.dumpBranch(childID, depth+1, lines)
	}
}

// Parse builds a tree from checklist text. Depth is derived from
// indentation (four spaces per level), the marker maps to a status
// (x/X complete, - in progress, ! failed, anything else pending), and
// parents are resolved through a depth-indexed stack. Lines that do not
// look like checklist entries are ignored.
func Parse(text string, logger *logging.DebugLogger) *Tree {
	t := New(logger)
	var stack []int
	for _, line := range strings.Split(text, "\n") {
		m := checklistLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		depth := len(m[1]) / 4
		status := markerStatus(m[2])
		description := strings.TrimSpace(m[3])

		for len(stack) > depth {
			stack = stack[:len(stack)-1]
		}
		parentID := 0
		if len(stack) > 0 {
			parentID = stack[len(stack)-1]
		}
		node, err := t.CreateTask(description, parentID, status)
		if err != nil {
			continue
		}
		if depth >= len(stack) {
			stack = append(stack, node.ID)
		} else {
			stack[depth] = node.ID
		}
	}
	return t
}

func markerStatus(marker string) models.TaskStatus {
	switch marker {
	case "x", "X":
		return models.TaskStatusComplete
	case "-":
		return models.TaskStatusInProgress
	case "!":
		return models.TaskStatusFailed
	default:
		return models.TaskStatusPending
	}
}
