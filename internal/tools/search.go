package tools

import (
	"fmt"
	"strings"
)

// Search is a deterministic stub representing a web search action. It
// synthesizes a short snippet from the query and the goal instead of
// reaching the network.
type Search struct{}

func (t *Search) Name() string        { return "web_search" }
func (t *Search) Description() string { return "Lookup facts from a curated offline index." }

// Run produces a snippet for args["query"], falling back to the task
// description from the context.
func (t *Search) Run(ctx Context, args map[string]string) (Result, error) {
	query := args["query"]
	if query == "" {
		query = ctx.Task
	}
	snippet := shorten(fmt.Sprintf(
		"Synthesised search results for '%s' in relation to goal '%s'.", query, ctx.Goal), 180)
	return Result{
		Content:  snippet,
		Metadata: map[string]string{"tool": t.Name(), "query": query},
	}, nil
}

// shorten collapses whitespace and truncates the text to at most width
// characters, cutting on a word boundary and appending "..." when
// truncation happens.
func shorten(s string, width int) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	if len(collapsed) <= width {
		return collapsed
	}
	const placeholder = "..."
	limit := width - len(placeholder)
	cut := strings.LastIndex(collapsed[:limit+1], " ")
	if cut <= 0 {
		cut = limit
	}
	return strings.TrimRight(collapsed[:cut], " ") + placeholder
}
