// Package ligand prepares small molecules for docking.
package ligand

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/tikz/dockmate/config"
	"github.com/tikz/dockmate/mgltools"
	"github.com/tikz/dockmate/obabel"
	"github.com/tikz/dockmate/tool"
)

// SupportedInputs lists the accepted file extensions.
var SupportedInputs = []string{"mol2", "sdf", "pdb", "mol", "smi"}

// Ligand is a small-molecule file and the artifacts derived from it.
type Ligand struct {
	cfg    *config.Config
	path   string
	format string

	mol2Path  string
	pdbqtPath string
}

// Options controls Prepare.
type Options struct {
	Minimize                string // forcefield for energy minimization, "" to skip
	AddHydrogens            bool
	RemoveNonpolarHydrogens bool
	RemoveLonePairs         bool
	RemoveWaters            bool
}

// DefaultOptions adds hydrogens and strips non-polar hydrogens, lone pairs and waters,
// without minimization.
func DefaultOptions() Options {
	return Options{
		AddHydrogens:            true,
		RemoveNonpolarHydrogens: true,
		RemoveLonePairs:         true,
		RemoveWaters:            true,
	}
}

// NewLigand checks that path exists and has a supported extension.
func NewLigand(path string, cfg *config.Config) (*Ligand, error) {
	abs, err := tool.RequireFile("ligand", path)
	if err != nil {
		return nil, err
	}

	ext := tool.Ext(abs)
	if !Supported(ext) {
		return nil, errors.Wrapf(tool.ErrUnsupported, "ligand format '.%s', supported: %v", ext, SupportedInputs)
	}

	return &Ligand{cfg: cfg, path: abs, format: ext}, nil
}

// Supported reports whether ext, lower-case and without dot, is an accepted input.
func Supported(ext string) bool {
	for _, e := range SupportedInputs {
		if e == ext {
			return true
		}
	}
	return false
}

// Path returns the absolute input path.
func (l *Ligand) Path() string { return l.path }

// Mol2Path returns the 3D MOL2 written by Prepare, or "" before that.
func (l *Ligand) Mol2Path() string { return l.mol2Path }

// PDBQTPath returns the prepared ligand, or "" until Prepare succeeds.
func (l *Ligand) PDBQTPath() string { return l.pdbqtPath }

// Prepare builds a 3D MOL2 with Open Babel, optionally minimized, and converts it
// to PDBQT with MGLTools. An unsupported forcefield is rejected before anything runs.
func (l *Ligand) Prepare(opts Options) error {
	l.pdbqtPath = ""

	forcefield := strings.ToLower(opts.Minimize)
	if forcefield != "" && !obabel.ValidForcefield(forcefield) {
		return errors.Wrapf(tool.ErrUnsupported, "forcefield %q, supported: %v", forcefield, obabel.Forcefields)
	}

	tempDir, err := l.cfg.Dir()
	if err != nil {
		return err
	}
	stem := tool.Stem(l.path)

	l.mol2Path = filepath.Join(tempDir, stem+".mol2")
	babel := &obabel.Babel{Bin: l.cfg.OpenBabel}
	tool.Logger.Printf("ligand: building 3D conformer for %s", filepath.Base(l.path))
	err = babel.Convert(l.path, l.mol2Path, obabel.ConvertOptions{
		InFormat:   l.format,
		OutFormat:  "mol2",
		Gen3D:      true,
		Hydrogens:  true,
		Forcefield: forcefield,
	})
	if err != nil {
		return err
	}

	mgl := &mgltools.MGLTools{Python: l.cfg.MGLPython, LigandScript: l.cfg.PrepareLigand}
	out := filepath.Join(tempDir, stem+".pdbqt")
	tool.Logger.Printf("ligand: writing %s", filepath.Base(out))
	err = mgl.PrepareLigand(l.mol2Path, out, mgltools.Options{
		AddHydrogens:            opts.AddHydrogens,
		RemoveNonpolarHydrogens: opts.RemoveNonpolarHydrogens,
		RemoveLonePairs:         opts.RemoveLonePairs,
		RemoveWaters:            opts.RemoveWaters,
	})
	if err != nil {
		return err
	}

	l.pdbqtPath = out
	return nil
}

// SavePDBQT copies the prepared PDBQT to dest, a file path or an existing directory.
// Returns the path written.
func (l *Ligand) SavePDBQT(dest string) (string, error) {
	if l.pdbqtPath == "" || !tool.IsFile(l.pdbqtPath) {
		return "", errors.Wrap(tool.ErrNotReady, "ligand not prepared, run Prepare first")
	}
	return tool.CopyFile(l.pdbqtPath, dest)
}
