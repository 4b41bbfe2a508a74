package ligand

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tikz/dockmate/config"
	"github.com/tikz/dockmate/tool"
	"github.com/tikz/dockmate/tool/tooltest"
)

func fakeTools(t *testing.T) *config.Config {
	t.Helper()
	home := t.TempDir()
	bin := filepath.Join(home, "bin")
	require.NoError(t, os.MkdirAll(bin, os.ModePerm))

	cfg := config.New(home)
	cfg.OpenBabel = tooltest.Script(t, bin, "obabel", tooltest.OutputArg("-O")+`
echo "@<TRIPOS>MOLECULE" > "$out"`)
	cfg.MGLPython = tooltest.Script(t, bin, "pythonsh", tooltest.OutputArg("-o")+`
echo "ROOT" > "$out"`)
	return cfg
}

func TestNewLigandExtensions(t *testing.T) {
	cfg := config.New(t.TempDir())
	dir := t.TempDir()

	for _, ext := range SupportedInputs {
		path := tooltest.WriteFile(t, dir, "lig."+ext, "")
		_, err := NewLigand(path, cfg)
		assert.NoError(t, err, ext)
	}

	for _, ext := range []string{"pdbqt", "xyz", "ent"} {
		path := tooltest.WriteFile(t, dir, "lig."+ext, "")
		_, err := NewLigand(path, cfg)
		assert.True(t, errors.Is(err, tool.ErrUnsupported), ext)
	}

	_, err := NewLigand(filepath.Join(dir, "nope.sdf"), cfg)
	assert.True(t, errors.Is(err, tool.ErrNotFound))
}

func TestPrepare(t *testing.T) {
	cfg := fakeTools(t)
	in := tooltest.WriteFile(t, t.TempDir(), "aspirin.SDF", "")

	l, err := NewLigand(in, cfg)
	require.NoError(t, err)
	require.NoError(t, l.Prepare(DefaultOptions()))

	mol2 := filepath.Join(cfg.TempDir, "aspirin.mol2")
	assert.Equal(t, mol2, l.Mol2Path())
	assert.Equal(t, filepath.Join(cfg.TempDir, "aspirin.pdbqt"), l.PDBQTPath())
	assert.FileExists(t, l.PDBQTPath())

	assert.Equal(t,
		[]string{"-i sdf " + in + " -o mol2 -O " + mol2 + " --gen3d -h"},
		tooltest.Calls(t, cfg.OpenBabel))
	assert.Equal(t,
		[]string{cfg.PrepareLigand + " -l aspirin.mol2 -o aspirin.pdbqt -A hydrogens -U nphs_lps_waters"},
		tooltest.Calls(t, cfg.MGLPython))
}

func TestPrepareMinimize(t *testing.T) {
	cfg := fakeTools(t)
	in := tooltest.WriteFile(t, t.TempDir(), "lig.smi", "CCO")

	l, err := NewLigand(in, cfg)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Minimize = "MMFF94"
	opts.RemoveLonePairs = false
	require.NoError(t, l.Prepare(opts))

	babel := tooltest.Calls(t, cfg.OpenBabel)
	require.Len(t, babel, 1)
	assert.Contains(t, babel[0], "--minimize --ff mmff94")

	mgl := tooltest.Calls(t, cfg.MGLPython)
	assert.Contains(t, mgl[0], "-U nphs_waters")
}

func TestPrepareRejectsForcefieldWithoutSideEffects(t *testing.T) {
	cfg := fakeTools(t)
	in := tooltest.WriteFile(t, t.TempDir(), "lig.sdf", "")

	l, err := NewLigand(in, cfg)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Minimize = "amber99"
	err = l.Prepare(opts)
	assert.True(t, errors.Is(err, tool.ErrUnsupported))

	assert.Nil(t, tooltest.Calls(t, cfg.OpenBabel))
	assert.Nil(t, tooltest.Calls(t, cfg.MGLPython))
	assert.NoDirExists(t, cfg.TempDir)
	assert.Empty(t, l.Mol2Path())
}

func TestPrepareLigandScriptFailure(t *testing.T) {
	cfg := fakeTools(t)
	cfg.MGLPython = tooltest.Script(t, t.TempDir(), "pythonsh", "echo 'stdout detail'; echo 'stderr detail' >&2; exit 1")
	in := tooltest.WriteFile(t, t.TempDir(), "lig.sdf", "")

	l, err := NewLigand(in, cfg)
	require.NoError(t, err)

	err = l.Prepare(DefaultOptions())
	assert.True(t, errors.Is(err, tool.ErrToolFailed))

	var te *tool.ToolError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "stdout detail\n", te.Stdout)
	assert.Equal(t, "stderr detail\n", te.Stderr)
	assert.FileExists(t, l.Mol2Path())
}

func TestSavePDBQT(t *testing.T) {
	cfg := fakeTools(t)
	in := tooltest.WriteFile(t, t.TempDir(), "lig.mol", "")

	l, err := NewLigand(in, cfg)
	require.NoError(t, err)

	_, err = l.SavePDBQT(t.TempDir())
	assert.True(t, errors.Is(err, tool.ErrNotReady))

	require.NoError(t, l.Prepare(DefaultOptions()))
	dest := t.TempDir()
	got, err := l.SavePDBQT(dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "lig.pdbqt"), got)

	want, _ := os.ReadFile(l.PDBQTPath())
	have, _ := os.ReadFile(got)
	assert.Equal(t, want, have)
}
