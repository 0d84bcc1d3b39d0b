package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	applycmd "github.com/arthur-debert/typewriter/cmd/typewriter/commands/apply"
	initcmd "github.com/arthur-debert/typewriter/cmd/typewriter/commands/init"
	"github.com/arthur-debert/typewriter/pkg/logging"
)

// Version information, set at build time via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbosity int

	rootCmd = &cobra.Command{
		Use:   "typewriter",
		Short: "A declarative configuration-file manager",
		Long: `typewriter applies declarative TOML documents to your system: each
document declares which source files overwrite which destinations, with
variable substitution, drift detection and command hooks. Documents can
link other documents to keep a large configuration modular.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to every confirmation prompt")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(applycmd.NewCommand())
	rootCmd.AddCommand(initcmd.NewCommand())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information for typewriter`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("typewriter version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}
