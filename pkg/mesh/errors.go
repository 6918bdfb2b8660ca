package mesh

import "fmt"

// FormatError reports a binary stream that ended before the header, the
// triangle count or the declared number of triangles could be read.
type FormatError struct {
	Op       string // "header", "count" or "triangle"
	Triangle int    // index of the record being read when Op is "triangle"
	Declared uint32 // triangle count from the file when Op is "triangle"
	Err      error
}

func (e *FormatError) Error() string {
	if e.Op == "triangle" {
		return fmt.Sprintf("stl: truncated at triangle %d of %d: %v", e.Triangle, e.Declared, e.Err)
	}
	return fmt.Sprintf("stl: reading %s: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
