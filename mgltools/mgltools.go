// Package mgltools runs the AutoDockTools preparation scripts that write PDBQT files.
package mgltools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/tikz/dockmate/tool"
)

// MGLTools holds the MGLTools python interpreter and the two preparation scripts.
type MGLTools struct {
	Python         string
	ReceptorScript string
	LigandScript   string
}

// Options maps to the -A and -U flags shared by both scripts.
type Options struct {
	AddHydrogens            bool // -A hydrogens
	RemoveNonpolarHydrogens bool // -U nphs
	RemoveLonePairs         bool // -U lps
	RemoveWaters            bool // -U waters
}

// RemoveFlags returns the -U value, e.g. "nphs_lps_waters", or "" when nothing is removed.
func (o Options) RemoveFlags() string {
	var flags []string
	if o.RemoveNonpolarHydrogens {
		flags = append(flags, "nphs")
	}
	if o.RemoveLonePairs {
		flags = append(flags, "lps")
	}
	if o.RemoveWaters {
		flags = append(flags, "waters")
	}
	return strings.Join(flags, "_")
}

func (o Options) args() []string {
	var args []string
	if o.AddHydrogens {
		args = append(args, "-A", "hydrogens")
	}
	if u := o.RemoveFlags(); u != "" {
		args = append(args, "-U", u)
	}
	return args
}

// ReceptorArgs builds the prepare_receptor4.py command line, without the interpreter.
func (m *MGLTools) ReceptorArgs(in, out string, opts Options) []string {
	return append([]string{m.ReceptorScript, "-r", in, "-o", out}, opts.args()...)
}

// LigandArgs builds the prepare_ligand4.py command line, without the interpreter.
func (m *MGLTools) LigandArgs(in, out string, opts Options) []string {
	return append([]string{m.LigandScript, "-l", in, "-o", out}, opts.args()...)
}

// PrepareReceptor converts a PDB receptor to PDBQT.
func (m *MGLTools) PrepareReceptor(in, out string, opts Options) error {
	if _, err := tool.New(m.Python, m.ReceptorArgs(in, out, opts)...).Run(); err != nil {
		return errors.Wrap(err, "prepare receptor")
	}
	if !tool.IsFile(out) {
		return errors.Wrapf(tool.ErrParse, "prepare_receptor4 wrote no %s", out)
	}
	return nil
}

// PrepareLigand converts a ligand to PDBQT. prepare_ligand4.py resolves its input
// relative to the working directory, so it runs inside the directory of in and
// receives base names only. The result is moved to out when out lies in
// another directory.
func (m *MGLTools) PrepareLigand(in, out string, opts Options) error {
	dir := filepath.Dir(in)
	c := tool.New(m.Python, m.LigandArgs(filepath.Base(in), filepath.Base(out), opts)...)
	c.Dir = dir
	if _, err := c.Run(); err != nil {
		return errors.Wrap(err, "prepare ligand")
	}

	written := filepath.Join(dir, filepath.Base(out))
	if !tool.IsFile(written) {
		return errors.Wrapf(tool.ErrParse, "prepare_ligand4 wrote no %s", written)
	}
	return move(written, out)
}

func move(src, dst string) error {
	a, err := filepath.Abs(src)
	if err != nil {
		return errors.WithStack(err)
	}
	b, err := filepath.Abs(dst)
	if err != nil {
		return errors.WithStack(err)
	}
	if a == b {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(b), os.ModePerm); err != nil {
		return errors.WithStack(err)
	}
	if err := os.Rename(a, b); err == nil {
		return nil
	}
	// rename fails across filesystems
	if _, err := tool.CopyFile(a, b); err != nil {
		return err
	}
	return errors.WithStack(os.Remove(a))
}
