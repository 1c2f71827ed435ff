package planner

import "testing"

func TestSplitGoal(t *testing.T) {
	tests := []struct {
		name string
		goal string
		max  int
		want []string
	}{
		{
			name: "sentences",
			goal: "Research the project. Document the structure.",
			max:  6,
			want: []string{"Research the project", "Document the structure"},
		},
		{
			name: "conjunctions and commas",
			goal: "Collect data and clean it, then publish results",
			max:  6,
			want: []string{"Collect data", "clean it", "publish results"},
		},
		{
			name: "deduplicates case-insensitively",
			goal: "Do the thing. do THE thing. Do another thing.",
			max:  6,
			want: []string{"Do the thing", "Do another thing"},
		},
		{
			name: "caps task count",
			goal: "a1, a2, a3, a4, a5, a6, a7, a8",
			max:  6,
			want: []string{"a1", "a2", "a3", "a4", "a5", "a6"},
		},
		{
			name: "collapses whitespace",
			goal: "  Research   the\tproject  ",
			max:  6,
			want: []string{"Research the project"},
		},
		{
			name: "empty",
			goal: "   ",
			max:  6,
			want: nil,
		},
		{
			name: "word boundary does not split within words",
			goal: "Understand the island",
			max:  6,
			want: []string{"Understand the island"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitGoal(tc.goal, tc.max)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("task %d: expected %q, got %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}
