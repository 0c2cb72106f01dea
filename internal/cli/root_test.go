package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dokan", cmd.Use)
	assert.Contains(t, cmd.Long, "queued")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"init"},
		{"item", "save"}, {"item", "list"}, {"item", "search"}, {"item", "delete"}, {"item", "low-stock"},
		{"checkout"},
		{"sale", "show"}, {"sale", "list"}, {"sale", "due"},
		{"expense", "add"}, {"expense", "list"}, {"expense", "delete"},
		{"user", "register"}, {"user", "login"}, {"user", "logout"}, {"user", "whoami"}, {"user", "profile"},
		{"queue", "list"},
		{"sync"},
		{"report", "dashboard"}, {"report", "monthly"},
		{"run"},
		{"remote-stub"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestCheckoutCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	checkoutCmd, _, err := cmd.Find([]string{"checkout"})
	require.NoError(t, err)

	methodFlag := checkoutCmd.Flags().Lookup("method")
	require.NotNil(t, methodFlag)
	assert.Equal(t, "cash", methodFlag.DefValue)
	require.NotNil(t, checkoutCmd.Flags().Lookup("line"))
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	code := Execute(context.Background(), []string{"--format", "invalid", "init"}, out, errOut)

	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, errOut.String(), "invalid format")
}
