// Package nlu implements the rule-based natural-language understanding
// engine for the medication assistant: entity extraction, medication text
// parsing, intent classification, name-similarity matching, medication
// conflict detection, and template-driven response generation.
//
// The engine is a pure function of its inputs plus the static pattern tables
// it was constructed with. It performs no I/O, holds no mutable state, and
// produces identical outputs for identical inputs, which makes a single
// Engine safe to share across any number of goroutines without locking.
//
// Conflict detection is a heuristic safety net over a small fixed
// interaction table, not a substitute for pharmacological review; an empty
// warning list must never be presented as a validated-safe result.
package nlu

// Engine exposes the understanding operations over one immutable set of
// pattern tables.
type Engine struct {
	tables *Tables
}

// NewEngine constructs an Engine over the given tables. A nil tables value
// selects DefaultTables.
func NewEngine(tables *Tables) *Engine {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Engine{tables: tables}
}

// Tables returns the pattern tables the engine was constructed with.
func (e *Engine) Tables() *Tables {
	return e.tables
}
