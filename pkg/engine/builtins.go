package engine

import (
	"fmt"
	"strconv"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/meshprobe/pkg/params"
	"github.com/chazu/meshprobe/pkg/verify"
)

// collector accumulates verifications while a script runs.
type collector struct {
	table   params.Table
	results []verify.Result
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpCheck wraps a verify.Check so `check` can hand it to `verification`.
type sexpCheck struct {
	check verify.Check
}

func (c *sexpCheck) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(check %q %v)", c.check.Description, c.check.Passed)
}
func (c *sexpCheck) Type() *zygo.RegisteredType { return nil }

// sexpResult wraps a verify.Result returned from `verification`.
type sexpResult struct {
	result verify.Result
}

func (r *sexpResult) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(verification %q %d)", r.result.Name, len(r.result.Checks))
}
func (r *sexpResult) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a truth value. The empty list counts as false.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return false, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toGo converts a Sexp to the Go value fmt verbs expect.
func toGo(s zygo.Sexp) interface{} {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val
	case *zygo.SexpFloat:
		return v.Val
	case *zygo.SexpStr:
		return v.S
	case *zygo.SexpBool:
		return v.Val
	}
	return s.SexpString(nil)
}

// formatNumber renders a value for a detail string: 17 rather than 17.000000.
func formatNumber(s zygo.Sexp) string {
	if f, err := toFloat64(s); err == nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if str, err := toString(s); err == nil {
		return str
	}
	return s.SexpString(nil)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the rule builtins into a zygomys environment.
// Source must be preprocessed with preprocessSource() so that :keyword
// tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, c *collector) {

	// -----------------------------------------------------------------------
	// (param "rj45_cutout_w" 0.0)
	// -----------------------------------------------------------------------
	env.AddFunction("param", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("param requires a name and an optional default, got %d arguments", len(args))
		}
		pname, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("param: name: %w", err)
		}
		var fallback float64
		if len(args) == 2 {
			if fallback, err = toFloat64(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("param: %s: default: %w", pname, err)
			}
		}
		return &zygo.SexpFloat{Val: c.table.Get(pname, fallback)}, nil
	})

	// -----------------------------------------------------------------------
	// (format "Width >= %g" w)
	// -----------------------------------------------------------------------
	env.AddFunction("format", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("format requires a format string")
		}
		layout, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("format: %w", err)
		}
		vals := make([]interface{}, 0, len(args)-1)
		for _, a := range args[1:] {
			vals = append(vals, toGo(a))
		}
		return &zygo.SexpStr{S: fmt.Sprintf(layout, vals...)}, nil
	})

	// -----------------------------------------------------------------------
	// (detail "cutout" w "min" m)  =>  "cutout=17, min=17"
	// -----------------------------------------------------------------------
	env.AddFunction("detail", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args)%2 != 0 {
			return zygo.SexpNull, fmt.Errorf("detail requires key/value pairs, got %d arguments", len(args))
		}
		parts := make([]string, 0, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			k, err := toString(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("detail: key %d: %w", i/2, err)
			}
			parts = append(parts, k+"="+formatNumber(args[i+1]))
		}
		return &zygo.SexpStr{S: strings.Join(parts, ", ")}, nil
	})

	// -----------------------------------------------------------------------
	// (check "Wall thickness >= 2 mm" (>= wall 2.0) :detail "wall=2.5")
	// -----------------------------------------------------------------------
	env.AddFunction("check", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("check requires a description and a condition")
		}
		desc, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("check: description: %w", err)
		}
		passed, err := toBool(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("check %q: condition: %w", desc, err)
		}
		chk := verify.Check{Description: desc, Passed: passed}
		if v, ok := pa.kw["detail"]; ok {
			if chk.Detail, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("check %q: detail: %w", desc, err)
			}
		}
		return &sexpCheck{check: chk}, nil
	})

	// -----------------------------------------------------------------------
	// (verification "RJ45 Cutout" (check ...) (check ...))
	// -----------------------------------------------------------------------
	env.AddFunction("verification", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("verification requires a name argument")
		}
		vname, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("verification: name: %w", err)
		}

		res := verify.Result{Name: vname}
		for i := 1; i < len(args); i++ {
			chk, ok := args[i].(*sexpCheck)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("verification %q: argument %d: expected check, got %T (%s)",
					vname, i, args[i], args[i].SexpString(nil))
			}
			res.Checks = append(res.Checks, chk.check)
		}
		c.results = append(c.results, res)
		return &sexpResult{result: res}, nil
	})
}
