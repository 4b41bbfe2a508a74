// Package protein prepares receptor structures for docking.
//
// A receptor goes through three external tools: Open Babel converts it to PDB
// when needed, PDBFixer repairs it, and MGLTools writes the charge-annotated
// PDBQT file that Vina reads.
package protein

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/tikz/dockmate/config"
	"github.com/tikz/dockmate/mgltools"
	"github.com/tikz/dockmate/obabel"
	"github.com/tikz/dockmate/pdbfixer"
	"github.com/tikz/dockmate/tool"
)

// SupportedInputs lists the accepted file extensions.
var SupportedInputs = []string{"pdb", "mol2", "sdf", "pdbqt", "ent", "xyz"}

// Protein is a receptor file and the artifacts derived from it.
type Protein struct {
	cfg  *config.Config
	path string
	ext  string

	pdbPath   string // repaired PDB, set by Prepare
	pdbqtPath string // final PDBQT, set only when Prepare succeeds
}

// Options controls Prepare.
type Options struct {
	PH                      float64
	AddHydrogens            bool
	RemoveWater             bool
	RemoveNonpolarHydrogens bool
	RemoveLonePairs         bool
	AddCharges              bool // accepted for compatibility, currently unused
}

// DefaultOptions protonates at pH 7.4 and strips waters.
func DefaultOptions() Options {
	return Options{
		PH:           7.4,
		AddHydrogens: true,
		RemoveWater:  true,
		AddCharges:   true,
	}
}

// NewProtein checks that path exists and has a supported extension.
func NewProtein(path string, cfg *config.Config) (*Protein, error) {
	abs, err := tool.RequireFile("protein", path)
	if err != nil {
		return nil, err
	}

	ext := tool.Ext(abs)
	if !supported(ext) {
		return nil, errors.Wrapf(tool.ErrUnsupported, "protein format '.%s', supported: %v", ext, SupportedInputs)
	}

	return &Protein{cfg: cfg, path: abs, ext: ext}, nil
}

func supported(ext string) bool {
	for _, e := range SupportedInputs {
		if e == ext {
			return true
		}
	}
	return false
}

// Path returns the absolute input path.
func (p *Protein) Path() string { return p.path }

// PDBPath returns the repaired PDB written by Prepare, or "" before that.
func (p *Protein) PDBPath() string { return p.pdbPath }

// PDBQTPath returns the prepared receptor, or "" until Prepare succeeds.
func (p *Protein) PDBQTPath() string { return p.pdbqtPath }

// Prepare runs the conversion, repair and PDBQT steps. Intermediate files are
// written to the temp directory and left there if a step fails.
func (p *Protein) Prepare(opts Options) error {
	p.pdbqtPath = ""

	tempDir, err := p.cfg.Dir()
	if err != nil {
		return err
	}
	stem := tool.Stem(p.path)

	pdbPath := p.path
	if p.ext != "pdb" {
		pdbPath = filepath.Join(tempDir, stem+".pdb")
		tool.Logger.Printf("protein: converting %s to PDB", filepath.Base(p.path))
		babel := &obabel.Babel{Bin: p.cfg.OpenBabel}
		if err := babel.Convert(p.path, pdbPath, obabel.ConvertOptions{Gen3D: true}); err != nil {
			return err
		}
	}

	fixer, err := pdbfixer.NewFixer(p.cfg.PDBFixer)
	if err != nil {
		return err
	}
	fixedPath := filepath.Join(tempDir, stem+"_fixed.pdb")
	tool.Logger.Printf("protein: repairing %s", filepath.Base(pdbPath))
	_, err = fixer.Fix(pdbPath, fixedPath, pdbfixer.FixOptions{
		PH:           opts.PH,
		AddHydrogens: opts.AddHydrogens,
		KeepWater:    !opts.RemoveWater,
	})
	if err != nil {
		return err
	}
	p.pdbPath = fixedPath

	mgl := &mgltools.MGLTools{Python: p.cfg.MGLPython, ReceptorScript: p.cfg.PrepareReceptor}
	out := filepath.Join(tempDir, stem+".pdbqt")
	tool.Logger.Printf("protein: writing %s", filepath.Base(out))
	err = mgl.PrepareReceptor(fixedPath, out, mgltools.Options{
		AddHydrogens:            opts.AddHydrogens,
		RemoveNonpolarHydrogens: opts.RemoveNonpolarHydrogens,
		RemoveLonePairs:         opts.RemoveLonePairs,
		RemoveWaters:            opts.RemoveWater,
	})
	if err != nil {
		return err
	}

	p.pdbqtPath = out
	return nil
}

// SavePDBQT copies the prepared PDBQT to dest, a file path or an existing directory.
// Returns the path written.
func (p *Protein) SavePDBQT(dest string) (string, error) {
	if p.pdbqtPath == "" || !tool.IsFile(p.pdbqtPath) {
		return "", errors.Wrap(tool.ErrNotReady, "protein not prepared, run Prepare first")
	}
	return tool.CopyFile(p.pdbqtPath, dest)
}
