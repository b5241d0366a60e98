package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Run    *RunCommand
	Demote *DemoteCommand
	Status *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "housekeeper"
	parser.LongDescription = "Reclaims space in the local article cache: expires old feed groups, deletes unreachable articles, trims talk pages, and demotes disk payloads."

	cmds := &commands{
		Run:    &RunCommand{globals: &globals, version: version},
		Demote: &DemoteCommand{globals: &globals, version: version},
		Status: &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("run", "Run a housekeeping pass", "Expire old feed groups, delete unreferenced articles, and prune talk pages. Prints the evicted article URLs.", cmds.Run)
	parser.AddCommand("demote", "Demote the disk cache", "Clear the cached flag on unsaved articles that no open tab holds and delete their payload directories.", cmds.Demote)
	parser.AddCommand("status", "Show cache statistics", "Show record counts, database size, and housekeeping limits.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the housekeeper CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("housekeeper %s\n", version)
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
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
