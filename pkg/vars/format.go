package vars

import (
	"regexp"
	"strings"

	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/errors"
)

// Pattern is a compiled variable_format. The format string is matched
// literally except for the {variable} marker, which matches a variable
// name with or without a surrounding brace pair: `$TYPEWRITER{variable}`
// matches `$TYPEWRITER{editor}` (and bare `$TYPEWRITEReditor`) and
// captures `editor`.
type Pattern struct {
	format string
	re     *regexp.Regexp
}

// CompileFormat turns a variable_format string into a Pattern.
func CompileFormat(format string) (*Pattern, error) {
	if !strings.Contains(format, document.VariableMarker) {
		return nil, errors.Newf(errors.ErrConfigValid,
			"variable_format %q does not contain the %s marker", format, document.VariableMarker)
	}

	// The marker's own braces double as the reference delimiters, so the
	// compiled pattern must still accept them around the captured name.
	expr := strings.Replace(
		regexp.QuoteMeta(format),
		regexp.QuoteMeta(document.VariableMarker),
		`\{?([^{}\s]+)\}?`,
		1,
	)
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigValid, "compiling variable_format %q", format)
	}

	return &Pattern{format: format, re: re}, nil
}

// String returns the source format.
func (p *Pattern) String() string {
	return p.format
}

// References returns the variable names referenced in s, deduplicated,
// in order of first appearance.
func (p *Pattern) References(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range p.re.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Replace substitutes every reference in s with its value. A reference
// to a name absent from values is an error naming the variable.
func (p *Pattern) Replace(s string, values map[string]string) (string, error) {
	for _, name := range p.References(s) {
		if _, ok := values[name]; !ok {
			return "", errors.Newf(errors.ErrVarUndefined, "variable %q is undefined", name)
		}
	}

	return p.re.ReplaceAllStringFunc(s, func(match string) string {
		name := p.re.FindStringSubmatch(match)[1]
		return values[name]
	}), nil
}
