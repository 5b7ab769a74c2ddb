package importer

import "fmt"

// Result is the immutable outcome of one import run. Summary counts are
// authoritative only when Success is true; a rolled-back import reports an
// empty summary.
type Result struct {
	Success         bool               `json:"success"`
	Message         string             `json:"message"`
	Summary         map[EntityType]int `json:"summary"`
	Warnings        []string           `json:"warnings"`
	Errors          []string           `json:"errors"`
	DurationSeconds float64            `json:"duration_seconds"`
}

// Accumulator collects warnings and errors across the whole run. Warnings
// never block commit; any error forces a rollback at the end. Both lists
// preserve insertion order; warnings are deduplicated.
type Accumulator struct {
	warnings []string
	warnSeen map[string]struct{}
	errors   []string
}

func NewAccumulator() *Accumulator {
	return &Accumulator{warnSeen: make(map[string]struct{})}
}

func (a *Accumulator) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if _, dup := a.warnSeen[msg]; dup {
		return
	}
	a.warnSeen[msg] = struct{}{}
	a.warnings = append(a.warnings, msg)
}

func (a *Accumulator) Errorf(format string, args ...any) {
	a.errors = append(a.errors, fmt.Sprintf(format, args...))
}

func (a *Accumulator) HasErrors() bool { return len(a.errors) > 0 }

func (a *Accumulator) Warnings() []string {
	return append([]string(nil), a.warnings...)
}

func (a *Accumulator) Errors() []string {
	return append([]string(nil), a.errors...)
}
