// Package tooltest writes stand-in executables for tests of the tool wrappers.
package tooltest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Script writes an executable /bin/sh script named name into dir and returns its path.
// Every invocation appends its arguments, one line per call, to <path>.args.
func Script(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	script := "#!/bin/sh\nprintf '%s\\n' \"$*\" >> \"" + path + ".args\"\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// Calls returns the argument lines recorded by a Script, one entry per invocation.
// It returns nil when the script never ran.
func Calls(t *testing.T, path string) []string {
	t.Helper()

	raw, err := os.ReadFile(path + ".args")
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
}

// WriteFile creates a file under dir with the given contents and returns its path.
func WriteFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), os.ModePerm))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

// OutputArg is a shell snippet that sets $out to the value following flag.
// For example OutputArg("-O") handles "obabel ... -O out.mol2".
func OutputArg(flag string) string {
	return `out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "` + flag + `" ]; then out="$a"; fi
  prev="$a"
done`
}
