package apply

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/typewriter/pkg/apply"
	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/ui"
)

// NewCommand creates the apply command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apply",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		RunE:    run,
	}

	cmd.Flags().StringP("file", "f", "typewriter.toml", "Root configuration document to apply")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	yes, _ := cmd.Flags().GetBool("yes")

	set, err := document.Resolve(file)
	if err != nil {
		return err
	}

	for _, warning := range set.Warnings {
		pterm.Warning.Println(warning)
	}

	var confirmer ui.Confirmer = ui.TerminalConfirmer{}
	if yes {
		confirmer = ui.AutoConfirmer{Answer: true}
	}

	pipeline, err := apply.New(set, confirmer)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(cmd.Context())
	if err != nil {
		return err
	}

	for _, entry := range result.Entries {
		switch entry.Status {
		case apply.StatusApplied:
			pterm.Success.Printfln("APPLIED %s to %s [ref: %s]",
				entry.Entry.Source, entry.Entry.Destination, entry.Entry.Origin)
		case apply.StatusSkippedSame:
			pterm.Info.Printfln("SKIPPED %s (content unchanged)", entry.Entry.Destination)
		case apply.StatusSkippedDrift:
			pterm.Warning.Printfln("SKIPPED %s (overwrite declined)", entry.Entry.Destination)
		}
	}
	for _, entry := range result.SkippedValidation {
		pterm.Warning.Printfln("SKIPPED %s (could not be applied)", entry.Destination)
	}

	pterm.Info.Printfln("%d applied, %d skipped", result.Applied(), result.Skipped())
	return nil
}
