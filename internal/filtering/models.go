package filtering

import "github.com/google/cel-go/cel"

// Rule is a suppression rule: a change event for which Expression evaluates
// to true is not dispatched.
type Rule struct {
	Name       string
	Expression string
	program    cel.Program
}
