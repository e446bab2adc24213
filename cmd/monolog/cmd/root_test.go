package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/ssargent/monologreader/pkg/di"
	"github.com/stretchr/testify/require"
)

const testLog = `[2024-03-01 10:00:00] app.INFO: started {"version":"1.2"} []
[2024-03-01 10:00:05] app.ERROR: boom
#0 /app/index.php(3): main() {"code":500} []
[2024-03-01 10:01:00] db.DEBUG: query {"sql":"select 1"} {"ms":3}
`

// writeLog writes content to a log file in a temporary directory
func writeLog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// resetFlags puts every flag back to its default so tests don't leak state
// through the package-level commands.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the CLI with args and returns what it wrote to stdout
func executeCommand(t *testing.T, container *di.Container, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	if container == nil {
		container = di.NewContainer()
	}
	SetContainer(container)
	resetFlags(rootCmd)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}
