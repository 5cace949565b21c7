package devenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	path, err := ResolvePath("flights.db")
	require.NoError(t, err)
	require.Equal(t, "flights.db", path)

	root, err := GetWorkspaceRoot()
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "go.mod"))
	require.NoError(t, err)

	path, err = ResolvePath("<dev_state>/flights.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "flights.db"), path)
}
