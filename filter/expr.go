package filter

import (
	"fmt"
	"maps"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
}

// CompilerOption configures an expr compiler
type CompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) CompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// NewCompiler creates a new expr-based filter compiler.
//
// Every top-level key of an entry is available as a variable, so
// `estado == "finalizado" and hallazgo` is a valid filter. Keys that are not
// valid identifiers are reachable through field("key"). The helpers are:
//
//	has(key)                 the entry carries key with a non-null value
//	field(key)               the value of key, or nil
//	containsFold(value, sub) case-insensitive substring match on any value
//
// The expr builtins (lower, upper, len, ...) and operators (contains,
// startsWith, matches, in, ...) are available as usual.
func NewCompiler(opts ...CompilerOption) CachingCompiler {
	c := &exprCompiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type exprCompiler struct {
	cache *lruCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(helperFunctions(nil)),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Match evaluates the filter against an entry. Runtime errors, such as
// comparing a string field with a number, count as no match.
func (f *exprFilter) Match(entry map[string]any) bool {
	result, err := expr.Run(f.program, runtimeEnvironment(entry))
	if err != nil {
		return false
	}
	matched, ok := result.(bool)
	return ok && matched
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// runtimeEnvironment exposes the entry's keys alongside the helpers. Helpers
// shadow entry keys of the same name.
func runtimeEnvironment(entry map[string]any) map[string]any {
	env := make(map[string]any, len(entry)+3)
	maps.Copy(env, entry)
	maps.Copy(env, helperFunctions(entry))
	return env
}

func helperFunctions(entry map[string]any) map[string]any {
	return map[string]any{
		"has": func(key string) bool {
			v, ok := entry[key]
			return ok && v != nil
		},
		"field": func(key string) any {
			return entry[key]
		},
		"containsFold": func(value any, sub string) bool {
			if value == nil {
				return false
			}
			return strings.Contains(strings.ToLower(fmt.Sprint(value)), strings.ToLower(sub))
		},
	}
}
