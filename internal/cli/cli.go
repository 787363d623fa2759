// Package cli implements ecoctl, the operator tool for the detection store.
package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Migrate *MigrateCommand
	Seed    *SeedCommand
	Cleanup *CleanupCommand
	Retime  *RetimeCommand
	Stats   *StatsCommand
	UserAdd *UserAddCommand
}

func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "ecoctl"
	parser.LongDescription = "Maintenance commands for the EcoCare detection store."

	cmds := &commands{
		Migrate: &MigrateCommand{globals: &globals},
		Seed:    &SeedCommand{globals: &globals},
		Cleanup: &CleanupCommand{globals: &globals},
		Retime:  &RetimeCommand{globals: &globals},
		Stats:   &StatsCommand{globals: &globals},
		UserAdd: &UserAddCommand{globals: &globals},
	}

	parser.AddCommand("migrate", "Apply the database schema", "Open the store, apply pending migrations and print the schema version.", cmds.Migrate)
	parser.AddCommand("seed", "Load sample detections", "Load detections from a samples JSON file.", cmds.Seed)
	parser.AddCommand("cleanup", "Delete detections without an image", "Delete detections that have no image reference and list the remaining ones.", cmds.Cleanup)
	parser.AddCommand("retime", "Spread detections over past periods", "Move detections, in brand order, to today, yesterday, last week, last month and last year so every range has data.", cmds.Retime)
	parser.AddCommand("stats", "Print dashboard statistics", "Print the stats cards and alert counters for a range.", cmds.Stats)

	user, _ := parser.AddCommand("user", "Manage operator profiles", "Manage operator profiles.", &struct{}{})
	user.AddCommand("add", "Create a profile", "Create an operator profile and print its id.", cmds.UserAdd)

	return parser, &globals, cmds
}

// Run is the main entry point for the CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("ecoctl %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}
	return nil
}
