package protein

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tikz/dockmate/config"
	"github.com/tikz/dockmate/tool"
	"github.com/tikz/dockmate/tool/tooltest"
)

const structure = `ATOM      1  N   GLY A   1       1.000   2.000   3.000  1.00 20.00           N
ATOM      2  CA  GLY A   1       2.000   2.000   3.000  1.00 20.00           C
END
`

// fakeTools points every tool of cfg at a shell script that writes its output file.
func fakeTools(t *testing.T) *config.Config {
	t.Helper()
	home := t.TempDir()
	bin := filepath.Join(home, "bin")
	require.NoError(t, os.MkdirAll(bin, os.ModePerm))

	cfg := config.New(home)
	cfg.OpenBabel = tooltest.Script(t, bin, "obabel", tooltest.OutputArg("-O")+`
echo converted > "$out"`)
	cfg.PDBFixer = tooltest.Script(t, bin, "pdbfixer", `for a in "$@"; do
  case "$a" in --output=*) out="${a#--output=}";; esac
done
cat > "$out" <<'EOF'
`+structure+`EOF`)
	cfg.MGLPython = tooltest.Script(t, bin, "pythonsh", tooltest.OutputArg("-o")+`
echo "REMARK receptor" > "$out"`)
	return cfg
}

func TestNewProteinExtensions(t *testing.T) {
	cfg := config.New(t.TempDir())
	dir := t.TempDir()

	for _, ext := range SupportedInputs {
		path := tooltest.WriteFile(t, dir, "rec."+strings.ToUpper(ext), "")
		_, err := NewProtein(path, cfg)
		assert.NoError(t, err, ext)
	}

	for _, ext := range []string{"cif", "smi", "txt"} {
		path := tooltest.WriteFile(t, dir, "rec."+ext, "")
		_, err := NewProtein(path, cfg)
		assert.True(t, errors.Is(err, tool.ErrUnsupported), ext)
	}

	_, err := NewProtein(filepath.Join(dir, "missing.pdb"), cfg)
	assert.True(t, errors.Is(err, tool.ErrNotFound))

	_, err = NewProtein(filepath.Join(dir, "missing.cif"), cfg)
	assert.True(t, errors.Is(err, tool.ErrNotFound), "existence is checked before the extension")
}

func TestPreparePDB(t *testing.T) {
	cfg := fakeTools(t)
	in := tooltest.WriteFile(t, t.TempDir(), "1abc.pdb", structure)

	p, err := NewProtein(in, cfg)
	require.NoError(t, err)
	require.NoError(t, p.Prepare(DefaultOptions()))

	assert.Equal(t, filepath.Join(cfg.TempDir, "1abc_fixed.pdb"), p.PDBPath())
	assert.Equal(t, filepath.Join(cfg.TempDir, "1abc.pdbqt"), p.PDBQTPath())
	assert.Nil(t, tooltest.Calls(t, cfg.OpenBabel), "PDB input needs no conversion")

	fixer := tooltest.Calls(t, cfg.PDBFixer)
	require.Len(t, fixer, 1)
	assert.Contains(t, fixer[0], "--keep-heterogens=none")
	assert.Contains(t, fixer[0], "--ph=7.4")

	mgl := tooltest.Calls(t, cfg.MGLPython)
	require.Len(t, mgl, 1)
	assert.True(t, strings.HasSuffix(mgl[0], "-A hydrogens -U waters"), mgl[0])
}

func TestPrepareConvertsOtherFormats(t *testing.T) {
	cfg := fakeTools(t)
	in := tooltest.WriteFile(t, t.TempDir(), "rec.mol2", "")

	p, err := NewProtein(in, cfg)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.AddHydrogens = false
	opts.RemoveWater = false
	require.NoError(t, p.Prepare(opts))

	babel := tooltest.Calls(t, cfg.OpenBabel)
	require.Len(t, babel, 1)
	assert.Equal(t, in+" -O "+filepath.Join(cfg.TempDir, "rec.pdb")+" --gen3d", babel[0])

	fixer := tooltest.Calls(t, cfg.PDBFixer)
	assert.Contains(t, fixer[0], filepath.Join(cfg.TempDir, "rec.pdb"))
	assert.Contains(t, fixer[0], "--keep-heterogens=water")

	mgl := tooltest.Calls(t, cfg.MGLPython)
	assert.NotContains(t, mgl[0], "-A")
	assert.NotContains(t, mgl[0], "-U")
}

func TestPrepareReceptorFailureIsFatal(t *testing.T) {
	cfg := fakeTools(t)
	cfg.MGLPython = tooltest.Script(t, t.TempDir(), "pythonsh", "echo boom >&2; exit 2")
	in := tooltest.WriteFile(t, t.TempDir(), "1abc.pdb", structure)

	p, err := NewProtein(in, cfg)
	require.NoError(t, err)

	err = p.Prepare(DefaultOptions())
	assert.True(t, errors.Is(err, tool.ErrToolFailed))
	assert.Empty(t, p.PDBQTPath())
	assert.FileExists(t, filepath.Join(cfg.TempDir, "1abc_fixed.pdb"), "intermediate files stay for diagnostics")

	_, err = p.SavePDBQT(t.TempDir())
	assert.True(t, errors.Is(err, tool.ErrNotReady))
}

func TestSavePDBQT(t *testing.T) {
	cfg := fakeTools(t)
	in := tooltest.WriteFile(t, t.TempDir(), "1abc.pdb", structure)

	p, err := NewProtein(in, cfg)
	require.NoError(t, err)

	_, err = p.SavePDBQT(t.TempDir())
	assert.True(t, errors.Is(err, tool.ErrNotReady), "save before prepare")

	require.NoError(t, p.Prepare(DefaultOptions()))

	dest := filepath.Join(t.TempDir(), "out", "receptor.pdbqt")
	got, err := p.SavePDBQT(dest)
	require.NoError(t, err)
	assert.Equal(t, dest, got)

	want, err := os.ReadFile(p.PDBQTPath())
	require.NoError(t, err)
	have, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, want, have)
}
