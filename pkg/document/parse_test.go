// Test Type: Unit Test
// Description: Tests for the document package - TOML decoding, aliases and defaults

package document_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/errors"
)

// writeDoc writes a document into dir and returns its path.
func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParse_FileEntries(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "root.toml", `
[[file]]
file = "vimrc"
destination = "/tmp/dest/vimrc"
pre_hook = ["echo pre"]
post_hook = ["echo post"]
continue_on_hook_error = true

[[track]]
source = "gitconfig"
destination = "sub/gitconfig"
skip_if_same_content = false
`)

	doc, err := document.Parse(path)
	require.NoError(t, err)
	require.Len(t, doc.Files, 2)

	first := doc.Files[0]
	assert.Equal(t, filepath.Join(dir, "vimrc"), first.Source)
	assert.Equal(t, "/tmp/dest/vimrc", first.Destination)
	assert.True(t, first.SkipIfSameContent, "skip_if_same_content defaults to true")
	assert.Equal(t, []string{"echo pre"}, first.PreHooks)
	assert.Equal(t, []string{"echo post"}, first.PostHooks)
	assert.True(t, first.ContinueOnHookError)
	assert.Equal(t, path, first.Origin)

	second := doc.Files[1]
	assert.Equal(t, filepath.Join(dir, "gitconfig"), second.Source)
	assert.Equal(t, filepath.Join(dir, "sub", "gitconfig"), second.Destination)
	assert.False(t, second.SkipIfSameContent)
}

func TestParse_VarAliases(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "vars.toml", `
[[var]]
name = "one"
value = "1"

[[variable]]
name = "two"
kind = "environment"
value = "HOME"

[[define]]
name = "three"
type = "command"
value = "echo 3"
`)

	doc, err := document.Parse(path)
	require.NoError(t, err)
	require.Len(t, doc.Vars, 3)

	assert.Equal(t, document.VarLiteral, doc.Vars[0].Kind, "kind defaults to literal")
	assert.Equal(t, document.VarEnvironment, doc.Vars[1].Kind)
	assert.Equal(t, document.VarCommand, doc.Vars[2].Kind, "type is accepted as alias of kind")
}

func TestParse_LinkAndHookAliases(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "links.toml", `
[[link]]
file = "a.toml"

[[include]]
file = "b.toml"

[[import]]
file = "c.toml"

[[hook]]
command = "echo hi"
stage = "pre_apply"

[[command]]
command = "echo bye"
stage = "post_apply"
continue_on_error = true
`)

	doc, err := document.Parse(path)
	require.NoError(t, err)

	require.Len(t, doc.Links, 3)
	assert.Equal(t, "a.toml", doc.Links[0].File)

	require.Len(t, doc.Hooks, 2)
	assert.Equal(t, document.StagePreApply, doc.Hooks[0].Stage)
	assert.Equal(t, document.StagePostApply, doc.Hooks[1].Stage)
	assert.True(t, doc.Hooks[1].ContinueOnError)
}

func TestParse_ConfigDefaultsMerge(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "cfg.toml", `
[config.apply]
checkdiff_strategy = "disabled"
cleanup_files = false
`)

	doc, err := document.Parse(path)
	require.NoError(t, err)
	require.NotNil(t, doc.Config)

	// Overridden options
	assert.Equal(t, document.CheckdiffDisabled, doc.Config.Apply.CheckdiffStrategy)
	assert.False(t, doc.Config.Apply.CleanupFiles)

	// Untouched options keep their defaults, including default-true bools
	assert.True(t, doc.Config.Apply.ConfirmApply)
	assert.Equal(t, ".typewriter", doc.Config.Apply.MetadataDir)
	assert.Equal(t, document.TempCopyAll, doc.Config.Apply.TempCopyStrategy)
	assert.Equal(t, "$TYPEWRITER{variable}", doc.Config.Variables.VariableFormat)
	assert.Equal(t, "bash", doc.Config.Commands.Shell)
	assert.True(t, doc.Config.Hooks.Enabled)
}

func TestParse_NoConfigTable(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "plain.toml", `
[[file]]
file = "x"
destination = "y"
`)

	doc, err := document.Parse(path)
	require.NoError(t, err)
	assert.Nil(t, doc.Config)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode errors.ErrorCode
	}{
		{
			name:     "malformed_toml",
			content:  `[[file` + "\n",
			wantCode: errors.ErrConfigParse,
		},
		{
			name:     "file_without_destination",
			content:  "[[file]]\nfile = \"x\"\n",
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "file_without_source",
			content:  "[[file]]\ndestination = \"y\"\n",
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "conflicting_file_and_source",
			content:  "[[file]]\nfile = \"a\"\nsource = \"b\"\ndestination = \"y\"\n",
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "empty_var_name",
			content:  "[[var]]\nname = \"\"\nvalue = \"v\"\n",
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "whitespace_var_name",
			content:  "[[var]]\nname = \"two words\"\nvalue = \"v\"\n",
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "invalid_var_kind",
			content:  "[[var]]\nname = \"x\"\nkind = \"mystery\"\nvalue = \"v\"\n",
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "invalid_hook_stage",
			content:  "[[hook]]\ncommand = \"echo\"\nstage = \"mid_apply\"\n",
			wantCode: errors.ErrHookStage,
		},
		{
			name:     "invalid_checkdiff_strategy",
			content:  "[config.apply]\ncheckdiff_strategy = \"md5\"\n",
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "variable_format_without_marker",
			content:  "[config.variables]\nvariable_format = \"$X{name}\"\n",
			wantCode: errors.ErrConfigValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, t.TempDir(), "bad.toml", tt.content)
			_, err := document.Parse(path)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode),
				"got %v, want code %s", err, tt.wantCode)
		})
	}
}

func TestParse_MissingDocument(t *testing.T) {
	_, err := document.Parse(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigRead))
}
