// Package validation holds the report type shared by all artifact validators.
//
// Validators re-parse an already serialized artifact and never return Go errors for
// a bad artifact: structural problems go to Errors (and make the report invalid),
// semantic problems go to Warnings.
package validation

import "fmt"

// Report is the outcome of validating one artifact.
type Report struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Collector accumulates errors and warnings while a validator walks an artifact.
// The zero value is ready to use.
type Collector struct {
	errors   []string
	warnings []string
}

// Errorf records a structural error.
func (c *Collector) Errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

// Warnf records a non-fatal warning.
func (c *Collector) Warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any error was recorded so far.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Report returns the collected report. Errors and Warnings are never nil, so the
// report always serializes them as arrays.
func (c *Collector) Report() Report {
	r := Report{
		IsValid:  len(c.errors) == 0,
		Errors:   make([]string, len(c.errors)),
		Warnings: make([]string, len(c.warnings)),
	}
	copy(r.Errors, c.errors)
	copy(r.Warnings, c.warnings)
	return r
}
