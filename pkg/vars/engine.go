// Package vars resolves every declared variable to its final string value
// before any file is touched. Cross-variable references form a dependency
// graph that must be acyclic; evaluation follows a topological order so a
// variable only ever sees already-resolved values.
package vars

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/errors"
	"github.com/arthur-debert/typewriter/pkg/logging"
	"github.com/arthur-debert/typewriter/pkg/shell"
)

var log = logging.GetLogger("vars")

// Engine evaluates variable declarations.
type Engine struct {
	pattern *Pattern
	runner  *shell.Runner
}

// NewEngine creates an Engine. runner executes command variables.
func NewEngine(pattern *Pattern, runner *shell.Runner) *Engine {
	return &Engine{pattern: pattern, runner: runner}
}

// Resolve turns the flattened declaration list into a name→value map.
// Duplicate names are a hard error before any evaluation; reference
// cycles are reported with the full set of entangled names.
func (e *Engine) Resolve(ctx context.Context, decls []document.VarDecl) (map[string]string, error) {
	origins := make(map[string]string, len(decls))
	for _, decl := range decls {
		if prev, ok := origins[decl.Name]; ok {
			return nil, errors.Newf(errors.ErrVarDuplicate,
				"variable %q declared in %s is already declared in %s", decl.Name, decl.Origin, prev)
		}
		origins[decl.Name] = decl.Origin
	}

	order, err := e.topoOrder(decls)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]string, len(decls))
	for _, decl := range order {
		value, err := e.evaluate(ctx, decl, resolved)
		if err != nil {
			return nil, err
		}
		resolved[decl.Name] = value
		log.Debug().Str("name", decl.Name).Str("kind", string(decl.Kind)).Msg("Variable resolved")
	}

	return resolved, nil
}

// topoOrder orders declarations so that every declared name a value
// references comes first (Kahn's algorithm). References to undeclared
// names contribute no edge; they surface later during evaluation.
func (e *Engine) topoOrder(decls []document.VarDecl) ([]document.VarDecl, error) {
	byName := make(map[string]document.VarDecl, len(decls))
	for _, decl := range decls {
		byName[decl.Name] = decl
	}

	indegree := make(map[string]int, len(decls))
	dependents := make(map[string][]string, len(decls))
	for _, decl := range decls {
		indegree[decl.Name] = 0
	}
	for _, decl := range decls {
		for _, ref := range e.pattern.References(decl.Value) {
			// A self-reference is a one-node cycle and keeps its own
			// indegree above zero, so Kahn's algorithm reports it below.
			if _, declared := byName[ref]; declared {
				indegree[decl.Name]++
				dependents[ref] = append(dependents[ref], decl.Name)
			}
		}
	}

	var queue []string
	for _, decl := range decls {
		if indegree[decl.Name] == 0 {
			queue = append(queue, decl.Name)
		}
	}

	var order []document.VarDecl
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, byName[name])
		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) < len(decls) {
		var cyclic []string
		for name, deg := range indegree {
			if deg > 0 {
				cyclic = append(cyclic, name)
			}
		}
		sort.Strings(cyclic)
		return nil, errors.Newf(errors.ErrVarCycle,
			"variable references form a cycle involving: %s", strings.Join(cyclic, ", "))
	}

	return order, nil
}

// evaluate produces the final value of one declaration. References to
// other variables are substituted into the declared value first, for
// every kind, so a command string may embed another variable's value.
func (e *Engine) evaluate(ctx context.Context, decl document.VarDecl, resolved map[string]string) (string, error) {
	value, err := e.pattern.Replace(decl.Value, resolved)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrVarUndefined,
			"in value of variable %q declared in %s", decl.Name, decl.Origin)
	}

	switch decl.Kind {
	case document.VarLiteral:
		return value, nil

	case document.VarEnvironment:
		env, ok := os.LookupEnv(value)
		if !ok {
			return "", errors.Newf(errors.ErrVarEnvMissing,
				"environment variable %q for variable %q declared in %s is not set", value, decl.Name, decl.Origin)
		}
		return env, nil

	case document.VarCommand:
		out, err := e.runner.Run(ctx, shell.Invocation{
			Command:     value,
			Description: fmt.Sprintf("variable %q in %s", decl.Name, decl.Origin),
			Workdir:     filepath.Dir(decl.Origin),
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(out), nil

	default:
		return "", errors.Newf(errors.ErrInternal, "unknown variable kind %q", decl.Kind)
	}
}
