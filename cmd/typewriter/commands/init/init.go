package init

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/typewriter/pkg/errors"
	"github.com/arthur-debert/typewriter/pkg/ui"
)

//go:embed template.toml
var defaultTemplate []byte

// NewCommand creates the init command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		RunE:    run,
	}

	cmd.Flags().StringP("dir", "d", ".", "Directory to create the template document in")
	cmd.Flags().StringP("file", "f", "typewriter.toml", "Name of the template document")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	file, _ := cmd.Flags().GetString("file")
	yes, _ := cmd.Flags().GetBool("yes")

	path := filepath.Join(dir, file)

	var confirmer ui.Confirmer = ui.TerminalConfirmer{}
	if yes {
		confirmer = ui.AutoConfirmer{Answer: true}
	}

	if _, err := os.Stat(path); err == nil {
		overwrite, err := confirmer.Confirm("A document already exists at "+path+". Overwrite it?", false)
		if err != nil {
			return err
		}
		if !overwrite {
			return errors.Newf(errors.ErrApplyDeclined, "not overwriting %s", path)
		}
	}

	if err := os.WriteFile(path, defaultTemplate, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "writing template to %s", path)
	}

	pterm.Success.Printfln("Wrote template document to %s", path)
	return nil
}
