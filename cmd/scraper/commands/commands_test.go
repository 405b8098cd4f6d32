package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOptionsCommand(t *testing.T) {
	out, err := execute(t, "options")
	require.NoError(t, err)

	assert.Contains(t, out, "Januar, Februar, Mart")
	assert.Contains(t, out, "Q1, Q2, Q3, Q4")
	assert.Contains(t, out, "2014, 2015")
	assert.Contains(t, out, "Novi Beograd")
	assert.True(t, strings.HasPrefix(out, "view types:  monthly, quarterly"))
}

func TestRunCommandRequiresPeriod(t *testing.T) {
	_, err := execute(t, "run", "--view", "monthly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "period")
}
