package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schemabase/backend/internal/domain/definition"
	"github.com/schemabase/backend/pkg/constants"
)

// DependencyGraphAnalyzer detects circular dependencies across the full
// collection set. One node per collection, one edge per relationship whose
// target is a known collection. The visited set and recursion stack are
// allocated per invocation, so concurrent calls do not interfere.
type DependencyGraphAnalyzer struct{}

// NewDependencyGraphAnalyzer creates a new DependencyGraphAnalyzer
func NewDependencyGraphAnalyzer() *DependencyGraphAnalyzer {
	return &DependencyGraphAnalyzer{}
}

type graphWalk struct {
	adjacency map[string][]string
	visited   map[string]bool
	onStack   map[string]bool
	stack     []string
	errs      []definition.ValidationError
}

// DetectCircularDependencies runs DFS from every unvisited collection and
// reports each cycle once, rendered as "A -> B -> ... -> A". This is a
// whole-graph check: the caller must assemble the complete collection set
// first. A stale partial set yields an incomplete but never incorrect
// graph, since edges to unknown collections are skipped.
func (a *DependencyGraphAnalyzer) DetectCircularDependencies(collections map[string]*definition.CollectionDefinition) []definition.ValidationError {
	walk := &graphWalk{
		adjacency: buildAdjacency(collections),
		visited:   make(map[string]bool),
		onStack:   make(map[string]bool),
	}

	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !walk.visited[name] {
			walk.visit(name)
		}
	}

	return walk.errs
}

func buildAdjacency(collections map[string]*definition.CollectionDefinition) map[string][]string {
	adjacency := make(map[string][]string, len(collections))
	for name, col := range collections {
		if col == nil {
			continue
		}
		targets := make([]string, 0, len(col.Relationships))
		for _, relName := range sortedRelationshipKeys(col.Relationships) {
			target := col.Relationships[relName].Collection
			if _, known := collections[target]; known {
				targets = append(targets, target)
			}
		}
		adjacency[name] = targets
	}
	return adjacency
}

func (w *graphWalk) visit(name string) {
	w.visited[name] = true
	w.onStack[name] = true
	w.stack = append(w.stack, name)

	for _, target := range w.adjacency[name] {
		if w.onStack[target] {
			w.reportCycle(target)
			// Stop exploring this branch; re-walking the same cycle
			// through another entry point would only duplicate the report.
			continue
		}
		if !w.visited[target] {
			w.visit(target)
		}
	}

	w.stack = w.stack[:len(w.stack)-1]
	w.onStack[name] = false
}

func (w *graphWalk) reportCycle(target string) {
	start := 0
	for i, name := range w.stack {
		if name == target {
			start = i
			break
		}
	}
	path := append(append([]string{}, w.stack[start:]...), target)

	w.errs = append(w.errs, definition.ValidationError{
		Kind:     definition.KindCycle,
		Field:    target,
		Code:     constants.CodeCircularDependency,
		Message:  fmt.Sprintf("circular dependency detected: %s", strings.Join(path, " -> ")),
		Severity: constants.SeverityError,
	})
}
