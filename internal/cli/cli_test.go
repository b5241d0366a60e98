package cli

import (
	"strings"
	"testing"

	goflags "github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseOnly builds a parser whose commands are recognized but not executed.
func parseOnly(t *testing.T, args ...string) (*GlobalFlags, *commands) {
	t.Helper()
	parser, globals, cmds := buildParser("test")
	parser.CommandHandler = func(goflags.Commander, []string) error { return nil }
	_, err := parser.ParseArgs(args)
	require.NoError(t, err)
	return globals, cmds
}

func TestVersionFlag(t *testing.T) {
	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("0.1.0-test", []string{"--version"})
	})

	assert.NoError(t, err)
	assert.Contains(t, output, "housekeeper 0.1.0-test")
}

func TestVersionOutputFormat(t *testing.T) {
	output := captureOutput(t, func() {
		_ = RunWithArgs("1.2.3", []string{"--version"})
	})

	assert.Equal(t, "housekeeper 1.2.3", strings.TrimSpace(output))
}

func TestAllSubcommandsExist(t *testing.T) {
	parser, _, _ := buildParser("test")
	for _, name := range []string{"run", "demote", "status"} {
		assert.NotNil(t, parser.Find(name), "subcommand %q should exist", name)
	}
}

func TestUnknownSubcommandFails(t *testing.T) {
	parser, _, _ := buildParser("test")
	parser.CommandHandler = func(goflags.Commander, []string) error { return nil }
	_, err := parser.ParseArgs([]string{"nonexistent"})
	require.Error(t, err)
}

func TestHelpFlagDoesNotError(t *testing.T) {
	err := RunWithArgs("test", []string{"--help"})
	assert.NoError(t, err)
}

func TestGlobalFlags(t *testing.T) {
	globals, _ := parseOnly(t, "--json", "--verbose", "--config", "/tmp/test.yaml", "--db-path", "/tmp/hk.db", "status")
	assert.True(t, globals.JSON)
	assert.True(t, globals.Verbose)
	assert.Equal(t, "/tmp/test.yaml", globals.Config)
	assert.Equal(t, "/tmp/hk.db", globals.DBPath)
}

func TestKeepFilesFlags(t *testing.T) {
	_, cmds := parseOnly(t, "run", "--keep-files")
	assert.True(t, cmds.Run.KeepFiles)

	_, cmds = parseOnly(t, "demote", "--keep-files")
	assert.True(t, cmds.Demote.KeepFiles)

	_, cmds = parseOnly(t, "demote")
	assert.False(t, cmds.Demote.KeepFiles)
}

func TestMissingConfigFileFails(t *testing.T) {
	err := RunWithArgs("test", []string{"--config", "/nonexistent/housekeeper.yaml", "status"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}
