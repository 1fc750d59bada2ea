// Package cli wires the depcollect root command. Grounded on
// cmd/gonuget/cli/app.go's root-command shape and custom help function.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/artifactgraph/depcollect/cmd/depcollect/output"
)

var rootCmd = &cobra.Command{
	Use:   "depcollect",
	Short: "Maven-style dependency graph collector",
	Long: `depcollect walks a Maven-style dependency tree from one or more root
coordinates, applying dependency management, version-range resolution and
relocation-following along the way.

Complete documentation is available at https://github.com/artifactgraph/depcollect`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Console is the global console for CLI commands.
var Console *output.Console

// Version information, set via ldflags during build.
var (
	Version = "0.0.0-dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	Console = output.DefaultConsole()

	rootCmd.PersistentFlags().StringP("verbosity", "", "normal", "Display verbosity (quiet, normal, detailed, diagnostic)")
	rootCmd.PersistentFlags().BoolP("non-interactive", "", false, "Do not prompt for user input or confirmations")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		switch v, _ := cmd.Flags().GetString("verbosity"); v {
		case "quiet":
			Console.SetVerbosity(output.VerbosityQuiet)
		case "detailed":
			Console.SetVerbosity(output.VerbosityDetailed)
		case "diagnostic":
			Console.SetVerbosity(output.VerbosityDiagnostic)
		}
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetHelpFunc(customHelpFunc)
}

func customHelpFunc(cmd *cobra.Command, args []string) {
	if cmd != cmd.Root() {
		usage := cmd.Long
		if usage == "" {
			usage = cmd.Short
		}
		if usage != "" {
			Console.Println(usage)
			Console.Println("")
		}
		Console.Printf("%s", cmd.UsageString())
		return
	}

	version := cmd.Root().Version
	if version == "" {
		version = "dev"
	}

	Console.Println("depcollect " + version)
	Console.Println("")
	Console.Println("Usage: depcollect [options] <command>")
	Console.Println("")
	Console.Println("Options:")
	Console.Println("  -h|--help  Show help information")
	Console.Println("  --version  Show version information")
	Console.Println("")
	Console.Println("Commands:")

	hideCommands := map[string]bool{"completion": true}
	for _, subCmd := range cmd.Root().Commands() {
		if subCmd.Hidden || hideCommands[subCmd.Name()] {
			continue
		}
		short := subCmd.Short
		if short == "" {
			short = subCmd.Long
		}
		Console.Println("  " + padRight(subCmd.Name(), 10) + " " + short)
	}

	Console.Println("")
	Console.Println(`Use "depcollect [command] --help" for more information about a command.`)
}

func padRight(s string, length int) string {
	for len(s) < length {
		s += " "
	}
	return s
}

func GetRootCommand() *cobra.Command { return rootCmd }

func SetupVersion() {
	rootCmd.SetVersionTemplate(Version + "\n")
	rootCmd.Version = Version
}

func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
