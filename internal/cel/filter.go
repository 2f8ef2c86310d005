// Package cel compiles expression filters over resource attributes.
//
// A filter is a boolean CEL expression over the variable item, a map of
// attribute names to string values:
//
//	item.state == "running" && int(item.memory) >= 512
package cel

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Prefix marks filter text that is an expression rather than plain text.
const Prefix = "?"

// Variable is the name items are bound to.
const Variable = "item"

// ErrNotBoolean is returned for expressions that do not yield a bool.
var ErrNotBoolean = errors.New("filter expression must evaluate to a bool")

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

func filterEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable(Variable, cel.MapType(cel.StringType, cel.StringType)),
			celext.Strings(),
			celext.Math(),
		)
	})
	return env, envErr
}

// IsExpression reports whether filter text should be compiled.
func IsExpression(text string) bool {
	return strings.HasPrefix(text, Prefix)
}

// Strip removes the expression prefix.
func Strip(text string) string {
	return strings.TrimSpace(strings.TrimPrefix(text, Prefix))
}

// Filter is a compiled expression filter.
type Filter struct {
	expr   string
	prg    cel.Program
	fields []string
}

// Compile parses and type-checks expr. The "?" prefix is optional.
func Compile(expr string) (*Filter, error) {
	expr = Strip(expr)
	if expr == "" {
		return nil, errors.New("empty filter expression")
	}
	e, err := filterEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(types.BoolType) && ast.OutputType() != types.DynType {
		return nil, fmt.Errorf("%w, got %s", ErrNotBoolean, ast.OutputType())
	}
	prg, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	f := &Filter{expr: expr, prg: prg}
	if parsed, err := cel.AstToParsedExpr(ast); err == nil {
		f.fields = referencedFields(parsed.GetExpr())
	}
	return f, nil
}

// String returns the expression without the prefix.
func (f *Filter) String() string { return f.expr }

// Fields returns the attribute names the expression reads, sorted.
func (f *Filter) Fields() []string { return append([]string(nil), f.fields...) }

// Match evaluates the filter against vars. Missing attributes and
// conversion failures are errors.
func (f *Filter) Match(vars map[string]string) (bool, error) {
	out, _, err := f.prg.Eval(map[string]any{Variable: vars})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("%w, got %s", ErrNotBoolean, out.Type().TypeName())
	}
	return bool(b), nil
}

// Predicate adapts the filter for list views: items the expression cannot
// evaluate against are hidden.
func (f *Filter) Predicate() func(map[string]string) bool {
	return func(vars map[string]string) bool {
		ok, err := f.Match(vars)
		return err == nil && ok
	}
}

// referencedFields collects item.x selections and item["x"] indexes.
func referencedFields(expr *exprpb.Expr) []string {
	seen := make(map[string]bool)
	var walk func(*exprpb.Expr)
	walk = func(e *exprpb.Expr) {
		if e == nil {
			return
		}
		switch e.ExprKind.(type) {
		case *exprpb.Expr_SelectExpr:
			sel := e.GetSelectExpr()
			if sel.GetOperand().GetIdentExpr().GetName() == Variable {
				seen[sel.GetField()] = true
				return
			}
			walk(sel.GetOperand())
		case *exprpb.Expr_CallExpr:
			call := e.GetCallExpr()
			if call.GetFunction() == "_[_]" && len(call.GetArgs()) == 2 &&
				call.GetArgs()[0].GetIdentExpr().GetName() == Variable {
				if key := call.GetArgs()[1].GetConstExpr(); key != nil {
					if s, ok := key.ConstantKind.(*exprpb.Constant_StringValue); ok {
						seen[s.StringValue] = true
						return
					}
				}
			}
			walk(call.GetTarget())
			for _, a := range call.GetArgs() {
				walk(a)
			}
		case *exprpb.Expr_ListExpr:
			for _, el := range e.GetListExpr().GetElements() {
				walk(el)
			}
		case *exprpb.Expr_ComprehensionExpr:
			c := e.GetComprehensionExpr()
			walk(c.GetIterRange())
			walk(c.GetAccuInit())
			walk(c.GetLoopCondition())
			walk(c.GetLoopStep())
			walk(c.GetResult())
		}
	}
	walk(expr)

	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
