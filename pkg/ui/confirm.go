// Package ui holds the interactive surface of typewriter. The core
// packages only ever see the Confirmer interface and decide when a
// confirmation is required; how the question reaches the user lives here.
package ui

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/typewriter/pkg/errors"
)

// Confirmer answers yes/no questions on behalf of the user.
type Confirmer interface {
	// Confirm asks the question and returns the user's answer.
	// def is the answer chosen when the user just presses enter.
	Confirm(question string, def bool) (bool, error)
}

// AutoConfirmer answers every question with a fixed value without
// prompting. Used for --yes runs and in tests.
type AutoConfirmer struct {
	Answer bool
}

// Confirm implements Confirmer
func (a AutoConfirmer) Confirm(question string, def bool) (bool, error) {
	return a.Answer, nil
}

// TerminalConfirmer prompts on the controlling terminal via pterm.
type TerminalConfirmer struct{}

// Confirm implements Confirmer. A required confirmation without a TTY is
// an error: silently assuming an answer would defeat the point of asking.
func (TerminalConfirmer) Confirm(question string, def bool) (bool, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false, errors.Newf(errors.ErrPromptUnavailable,
			"confirmation required but stdin is not a terminal (re-run with --yes to auto-accept): %s", question)
	}

	answer, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		Show(question)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrPromptUnavailable, "reading confirmation")
	}
	return answer, nil
}
