package wpimport

import (
	"fmt"
	"strings"
	"sync"
)

// Stats accumulates per-run counters so recoverable degradations are always
// auditable. Counter methods are safe to call from concurrent transforms.
type Stats struct {
	mu sync.Mutex

	RowsRead         int
	SimpleProducts   int
	VariableProducts int
	Variations       int
	OrphansResolved  int // variations attached on the second pass
	OrphansDropped   int // variations with no parent after the retry pass
	GroupedSkipped   int
	IgnoredRows      int

	UnknownCategories int
	AICalls           int
	AIFailures        int
	RowsEmitted       int
}

func (s *Stats) IncUnknownCategories(n int) {
	s.mu.Lock()
	s.UnknownCategories += n
	s.mu.Unlock()
}

func (s *Stats) IncAICalls() {
	s.mu.Lock()
	s.AICalls++
	s.mu.Unlock()
}

func (s *Stats) IncAIFailures() {
	s.mu.Lock()
	s.AIFailures++
	s.mu.Unlock()
}

// Summary renders the end-of-run statistics table printed to stdout.
func (s *Stats) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("Transformation summary\n")
	fmt.Fprintf(&b, "  rows read:            %d\n", s.RowsRead)
	fmt.Fprintf(&b, "  simple products:      %d\n", s.SimpleProducts)
	fmt.Fprintf(&b, "  variable products:    %d\n", s.VariableProducts)
	fmt.Fprintf(&b, "  variations attached:  %d\n", s.Variations)
	fmt.Fprintf(&b, "  orphans resolved:     %d\n", s.OrphansResolved)
	fmt.Fprintf(&b, "  orphans dropped:      %d\n", s.OrphansDropped)
	fmt.Fprintf(&b, "  grouped rows skipped: %d\n", s.GroupedSkipped)
	fmt.Fprintf(&b, "  other rows ignored:   %d\n", s.IgnoredRows)
	fmt.Fprintf(&b, "  unknown categories:   %d\n", s.UnknownCategories)
	fmt.Fprintf(&b, "  ai calls / failures:  %d / %d\n", s.AICalls, s.AIFailures)
	fmt.Fprintf(&b, "  rows emitted:         %d\n", s.RowsEmitted)
	return b.String()
}
