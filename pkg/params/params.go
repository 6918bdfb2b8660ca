// Package params reads numeric design parameters from OpenSCAD-style files.
// Only literal assignments are taken; anything computed from other
// variables is left to the design tool.
package params

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var assignRe = regexp.MustCompile(`^(\w+)\s*=\s*(-?[\d.]+)\s*;`)

// Table maps parameter names to values.
type Table map[string]float64

// Parse reads `name = literal;` lines from r. Blank lines, `//` comments and
// `$` special variables are skipped, as are assignments whose value is an
// expression. A later assignment to the same name wins.
func Parse(r io.Reader) (Table, error) {
	t := make(Table)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "$") {
			continue
		}
		m := assignRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			// "1.2.3" and the like match the pattern but are not numbers.
			continue
		}
		t[m[1]] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	return t, nil
}

// LoadFile parses the parameter file at path.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Get returns the named value, or fallback if it is absent.
func (t Table) Get(name string, fallback float64) float64 {
	if v, ok := t[name]; ok {
		return v
	}
	return fallback
}

// Names returns the parameter names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for n := range t {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
