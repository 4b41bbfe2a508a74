// Package pdbfixer repairs protein structures with the PDBFixer command line tool.
package pdbfixer

import (
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/tikz/dockmate/pdb"
	"github.com/tikz/dockmate/tool"
)

// Fixer runs the pdbfixer executable.
type Fixer struct {
	bin string
}

// FixOptions controls which repairs are applied.
type FixOptions struct {
	PH           float64 // pH used to protonate when AddHydrogens is set
	AddHydrogens bool
	KeepWater    bool // keep HOH when removing heterogens
}

// NewFixer returns a Fixer for the given executable. A bare name is looked up in PATH.
func NewFixer(binPath string) (*Fixer, error) {
	if binPath == "" {
		return nil, errors.Wrap(tool.ErrInvalidInput, "empty pdbfixer path")
	}
	if filepath.Base(binPath) != binPath {
		abs, err := filepath.Abs(binPath)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		binPath = abs
	}
	return &Fixer{bin: binPath}, nil
}

// Args builds the pdbfixer argument list. Missing residues and atoms are added,
// nonstandard residues replaced, and every heterogen other than (optionally) water removed.
func (o FixOptions) Args(in, out string) []string {
	addAtoms := "heavy"
	if o.AddHydrogens {
		addAtoms = "all"
	}
	keep := "none"
	if o.KeepWater {
		keep = "water"
	}

	args := []string{
		in,
		"--output=" + out,
		"--add-residues",
		"--add-atoms=" + addAtoms,
		"--replace-nonstandard",
		"--keep-heterogens=" + keep,
	}
	if o.AddHydrogens {
		args = append(args, "--ph="+strconv.FormatFloat(o.PH, 'f', -1, 64))
	}
	return args
}

// Fix repairs the PDB file in and writes the result to out.
// Returns the parsed repaired structure.
func (f *Fixer) Fix(in, out string, opts FixOptions) (*pdb.Structure, error) {
	if _, err := tool.New(f.bin, opts.Args(in, out)...).Run(); err != nil {
		return nil, errors.Wrapf(err, "fix %s", in)
	}

	s, err := pdb.ReadFile(out)
	if err != nil {
		return nil, errors.Wrapf(tool.ErrParse, "fixed structure: %v", err)
	}
	if len(s.Atoms) == 0 {
		return nil, errors.Wrapf(tool.ErrParse, "fixed structure %s has no ATOM records", out)
	}

	tool.Logger.Printf("pdbfixer: %d residues in %d chains, %d nonstandard left", s.TotalLength, len(s.Chains), s.NonstandardResidues())
	return s, nil
}
