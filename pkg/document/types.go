// Package document defines the typewriter document model and resolves a
// root document into the flattened set of file entries, variables and
// hooks reachable through its link graph.
package document

import (
	"strings"
	"unicode"

	"github.com/arthur-debert/typewriter/pkg/errors"
)

// VarKind selects how a variable's declared value turns into its final value.
type VarKind string

const (
	// VarLiteral inserts the declared string directly.
	VarLiteral VarKind = "literal"

	// VarCommand runs the declared string as a shell command and uses its
	// trimmed stdout.
	VarCommand VarKind = "command"

	// VarEnvironment reads the declared string as an environment variable key.
	VarEnvironment VarKind = "environment"
)

// HookStage is the point in the apply run at which a global hook executes.
type HookStage string

const (
	StagePreApply  HookStage = "pre_apply"
	StagePostApply HookStage = "post_apply"
)

// TempCopyStrategy controls destination backups during an apply.
type TempCopyStrategy string

const (
	TempCopyAll      TempCopyStrategy = "copy_all"
	TempCopyDisabled TempCopyStrategy = "disabled"
)

// FilePermissionStrategy controls pre-mutation accessibility validation.
type FilePermissionStrategy string

const (
	PermCheckOnly       FilePermissionStrategy = "check_only"
	PermCreateIfMissing FilePermissionStrategy = "create_if_missing"
	PermDisabled        FilePermissionStrategy = "disabled"
)

// CheckdiffStrategy selects the content fingerprint used for drift detection.
type CheckdiffStrategy string

const (
	CheckdiffXXHash   CheckdiffStrategy = "xxhash"
	CheckdiffDisabled CheckdiffStrategy = "disabled"
)

// VariableStrategy toggles variable substitution during file writes.
type VariableStrategy string

const (
	VariablesReplace  VariableStrategy = "replace_variables"
	VariablesDisabled VariableStrategy = "disabled"
)

// FailureStrategy is the document-wide policy for failing hooks.
type FailureStrategy string

const (
	FailAbort    FailureStrategy = "abort"
	FailContinue FailureStrategy = "continue"
)

// FileEntry is one source file to write to one destination path.
// Paths are absolute by the time the entry leaves this package.
type FileEntry struct {
	// Source is the file whose content is applied.
	Source string

	// Destination is the path the (substituted) content is written to.
	Destination string

	// SkipIfSameContent permits the checkdiff subsystem to skip this
	// entry entirely when source and destination content already match.
	SkipIfSameContent bool

	// PreHooks and PostHooks run around this entry's write.
	PreHooks  []string
	PostHooks []string

	// ContinueOnHookError suppresses failures of this entry's hooks.
	ContinueOnHookError bool

	// Origin is the document that declared this entry, for diagnostics
	// and as the working directory of its hooks.
	Origin string
}

// VarDecl is one declared variable. Names are globally unique across the
// whole resolved document set.
type VarDecl struct {
	Name   string
	Kind   VarKind
	Value  string
	Origin string
}

// HookDecl is a global hook attached to the whole apply run.
type HookDecl struct {
	Command         string
	Stage           HookStage
	ContinueOnError bool
	Origin          string
}

// LinkRef points at another document, relative to its owning document's
// directory.
type LinkRef struct {
	File string
}

// Document is one parsed configuration unit, identified by its canonical
// filesystem path. Immutable after parsing.
type Document struct {
	// Path is the canonical (symlink-resolved, absolute) path.
	Path string

	// Dir is the directory of Path; relative references resolve against it.
	Dir string

	Links []LinkRef
	Files []FileEntry
	Vars  []VarDecl
	Hooks []HookDecl

	// Config is the document's [config] table, nil when absent. Only the
	// root document's table is honored.
	Config *GlobalConfig
}

// GlobalConfig is the effective configuration of a run. Only the root
// document's [config] table contributes; missing options take defaults.
type GlobalConfig struct {
	Apply     ApplyConfig     `toml:"apply"`
	Variables VariablesConfig `toml:"variables"`
	Commands  CommandsConfig  `toml:"commands"`
	Hooks     HooksConfig     `toml:"hooks"`
}

// ApplyConfig holds [config.apply] options.
type ApplyConfig struct {
	AutoSkipUnableApply    bool                   `toml:"auto_skip_unable_apply"`
	ConfirmApply           bool                   `toml:"confirm_apply"`
	MetadataDir            string                 `toml:"apply_metadata_dir"`
	TempCopyStrategy       TempCopyStrategy       `toml:"temp_copy_strategy"`
	TempCopyPathDelim      string                 `toml:"temp_copy_path_delim"`
	CleanupFiles           bool                   `toml:"cleanup_files"`
	CheckdiffFileName      string                 `toml:"checkdiff_file_name"`
	CheckdiffStrategy      CheckdiffStrategy      `toml:"checkdiff_strategy"`
	CheckdiffSkipSame      bool                   `toml:"checkdiff_skip_same"`
	SkipCheckdiffNew       bool                   `toml:"skip_checkdiff_new"`
	FilePermissionStrategy FilePermissionStrategy `toml:"file_permission_strategy"`
}

// VariablesConfig holds [config.variables] options.
type VariablesConfig struct {
	// VariableFormat is the placeholder pattern searched for in file
	// content; it must contain the literal marker {variable}.
	VariableFormat   string           `toml:"variable_format"`
	VariableStrategy VariableStrategy `toml:"variable_strategy"`
}

// CommandsConfig holds [config.commands] options, shared by command
// variables and hooks.
type CommandsConfig struct {
	Shell                string `toml:"shell"`
	ShellCommandArg      string `toml:"shell_command_arg"`
	ConfirmShellCommands bool   `toml:"confirm_shell_commands"`
	InheritStdin         bool   `toml:"commands_inherit_stdin"`
	InheritStdout        bool   `toml:"commands_inherit_stdout"`
	InheritStderr        bool   `toml:"commands_inherit_stderr"`
}

// HooksConfig holds [config.hooks] options.
type HooksConfig struct {
	Enabled         bool            `toml:"hooks_enabled"`
	FailureStrategy FailureStrategy `toml:"failure_strategy"`
}

// VariableMarker is the literal token inside variable_format that stands
// in for a variable's name.
const VariableMarker = "{variable}"

// DefaultConfig returns the configuration used when the root document has
// no [config] table; absent options in a present table take these values
// field by field.
func DefaultConfig() GlobalConfig {
	return GlobalConfig{
		Apply: ApplyConfig{
			AutoSkipUnableApply:    false,
			ConfirmApply:           true,
			MetadataDir:            ".typewriter",
			TempCopyStrategy:       TempCopyAll,
			TempCopyPathDelim:      "-",
			CleanupFiles:           true,
			CheckdiffFileName:      ".checkdiff",
			CheckdiffStrategy:      CheckdiffXXHash,
			CheckdiffSkipSame:      true,
			SkipCheckdiffNew:       false,
			FilePermissionStrategy: PermCheckOnly,
		},
		Variables: VariablesConfig{
			VariableFormat:   "$TYPEWRITER" + VariableMarker,
			VariableStrategy: VariablesReplace,
		},
		Commands: CommandsConfig{
			Shell:                "bash",
			ShellCommandArg:      "-c",
			ConfirmShellCommands: true,
			InheritStdin:         true,
			InheritStdout:        true,
			InheritStderr:        true,
		},
		Hooks: HooksConfig{
			Enabled:         true,
			FailureStrategy: FailAbort,
		},
	}
}

// Validate checks every enum-valued option and the variable format.
func (c *GlobalConfig) Validate() error {
	switch c.Apply.TempCopyStrategy {
	case TempCopyAll, TempCopyDisabled:
	default:
		return errors.Newf(errors.ErrConfigValid, "invalid temp_copy_strategy %q (copy_all or disabled)", c.Apply.TempCopyStrategy)
	}

	switch c.Apply.FilePermissionStrategy {
	case PermCheckOnly, PermCreateIfMissing, PermDisabled:
	default:
		return errors.Newf(errors.ErrConfigValid, "invalid file_permission_strategy %q (check_only, create_if_missing or disabled)", c.Apply.FilePermissionStrategy)
	}

	switch c.Apply.CheckdiffStrategy {
	case CheckdiffXXHash, CheckdiffDisabled:
	default:
		return errors.Newf(errors.ErrConfigValid, "invalid checkdiff_strategy %q (xxhash or disabled)", c.Apply.CheckdiffStrategy)
	}

	switch c.Variables.VariableStrategy {
	case VariablesReplace, VariablesDisabled:
	default:
		return errors.Newf(errors.ErrConfigValid, "invalid variable_strategy %q (replace_variables or disabled)", c.Variables.VariableStrategy)
	}

	switch c.Hooks.FailureStrategy {
	case FailAbort, FailContinue:
	default:
		return errors.Newf(errors.ErrConfigValid, "invalid failure_strategy %q (abort or continue)", c.Hooks.FailureStrategy)
	}

	if !strings.Contains(c.Variables.VariableFormat, VariableMarker) {
		return errors.Newf(errors.ErrConfigValid, "variable_format %q does not contain the %s marker", c.Variables.VariableFormat, VariableMarker)
	}

	return nil
}

// ValidateVarName enforces the naming rules shared by every variable
// declaration: non-empty and free of whitespace.
func ValidateVarName(name string) error {
	if name == "" {
		return errors.New(errors.ErrVarName, "variable name cannot be empty")
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return errors.Newf(errors.ErrVarName, "variable name %q cannot contain whitespace", name)
	}
	return nil
}
