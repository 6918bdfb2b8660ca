// Package verify holds verification results for enclosure designs: the
// bundled cutout alignment rules and the board placement report computed
// from an analysed case bounding box.
package verify

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
)

// AlignmentRules checks cutout sizes and the support post position in an
// enclosure parameter file. It is a rule script for the engine package.
//
//go:embed alignment.zy
var AlignmentRules string

// Check is one pass/fail assertion.
type Check struct {
	Description string `json:"description"`
	Passed      bool   `json:"passed"`
	Detail      string `json:"detail,omitempty"`
}

// Result is a named group of checks.
type Result struct {
	Name   string  `json:"name"`
	Checks []Check `json:"checks"`
}

// Passed reports whether every check passed. A result without checks passes.
func (r Result) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Report renders the result as a status line followed by one line per check.
func (r Result) Report() string {
	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", status, r.Name)
	for _, c := range r.Checks {
		icon := "ok"
		if !c.Passed {
			icon = "FAIL"
		}
		fmt.Fprintf(&b, "\n  %s: %s", icon, c.Description)
		if c.Detail != "" {
			fmt.Fprintf(&b, " (%s)", c.Detail)
		}
	}
	return b.String()
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// WriteReport writes each result followed by an overall verdict and
// returns whether everything passed.
func WriteReport(w io.Writer, results []Result) (bool, error) {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "\n%s\n", r.Report()); err != nil {
			return false, err
		}
	}
	ok := AllPassed(results)
	verdict := "All verifications PASSED"
	if !ok {
		verdict = "Some verifications FAILED"
	}
	_, err := fmt.Fprintf(w, "\n%s\n%s\n", strings.Repeat("=", 40), verdict)
	return ok, err
}
