package obabel

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tikz/dockmate/tool"
	"github.com/tikz/dockmate/tool/tooltest"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		opts ConvertOptions
		want []string
	}{
		{
			name: "protein to pdb",
			opts: ConvertOptions{Gen3D: true},
			want: []string{"in.sdf", "-O", "out.pdb", "--gen3d"},
		},
		{
			name: "ligand to mol2",
			opts: ConvertOptions{InFormat: "sdf", OutFormat: "mol2", Gen3D: true, Hydrogens: true},
			want: []string{"-i", "sdf", "in.sdf", "-o", "mol2", "-O", "out.pdb", "--gen3d", "-h"},
		},
		{
			name: "minimized",
			opts: ConvertOptions{InFormat: "smi", OutFormat: "mol2", Gen3D: true, Hydrogens: true, Forcefield: "uff"},
			want: []string{"-i", "smi", "in.sdf", "-o", "mol2", "-O", "out.pdb", "--gen3d", "-h", "--minimize", "--ff", "uff"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.Args("in.sdf", "out.pdb"))
		})
	}
}

func TestValidForcefield(t *testing.T) {
	for _, ff := range []string{"mmff94", "mmff94s", "uff", "gaff"} {
		assert.True(t, ValidForcefield(ff), ff)
	}
	assert.False(t, ValidForcefield("amber"))
	assert.False(t, ValidForcefield("MMFF94"), "callers lower-case first")
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	bin := tooltest.Script(t, dir, "obabel", tooltest.OutputArg("-O")+`
echo "converted" > "$out"`)
	in := tooltest.WriteFile(t, dir, "lig.sdf", "x")
	out := filepath.Join(dir, "lig.mol2")

	b := &Babel{Bin: bin}
	require.NoError(t, b.Convert(in, out, ConvertOptions{InFormat: "sdf", OutFormat: "mol2"}))
	assert.FileExists(t, out)
}

func TestConvertRejectsForcefieldBeforeRunning(t *testing.T) {
	dir := t.TempDir()
	bin := tooltest.Script(t, dir, "obabel", "exit 0")

	b := &Babel{Bin: bin}
	err := b.Convert("in.sdf", filepath.Join(dir, "out.mol2"), ConvertOptions{Forcefield: "charmm"})
	assert.True(t, errors.Is(err, tool.ErrUnsupported))
	assert.Nil(t, tooltest.Calls(t, bin))
}

func TestConvertMissingOutput(t *testing.T) {
	dir := t.TempDir()
	bin := tooltest.Script(t, dir, "obabel", "echo '0 molecules converted' >&2")

	b := &Babel{Bin: bin}
	err := b.Convert("in.sdf", filepath.Join(dir, "out.mol2"), ConvertOptions{})
	assert.True(t, errors.Is(err, tool.ErrParse))
}

func TestConvertFailure(t *testing.T) {
	dir := t.TempDir()
	bin := tooltest.Script(t, dir, "obabel", "echo 'cannot read input format' >&2; exit 1")

	b := &Babel{Bin: bin}
	err := b.Convert("in.xyz", filepath.Join(dir, "out.pdb"), ConvertOptions{})
	assert.True(t, errors.Is(err, tool.ErrToolFailed))
	assert.Contains(t, err.Error(), "cannot read input format")
}
