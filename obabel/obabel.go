// Package obabel converts between molecular file formats with Open Babel.
package obabel

import (
	"github.com/pkg/errors"

	"github.com/tikz/dockmate/tool"
)

// Forcefields accepted by Open Babel's --minimize.
var Forcefields = []string{"mmff94", "mmff94s", "uff", "gaff"}

// Babel runs the obabel executable at Bin.
type Babel struct {
	Bin string
}

// ConvertOptions controls a single conversion.
type ConvertOptions struct {
	InFormat   string // -i, omitted when empty so obabel infers it from the extension
	OutFormat  string // -o, omitted when empty
	Gen3D      bool   // --gen3d
	Hydrogens  bool   // -h
	Forcefield string // --minimize --ff <forcefield> when not empty
}

// Args builds the obabel argument list for converting in to out.
func (o ConvertOptions) Args(in, out string) []string {
	var args []string
	if o.InFormat != "" {
		args = append(args, "-i", o.InFormat)
	}
	args = append(args, in)
	if o.OutFormat != "" {
		args = append(args, "-o", o.OutFormat)
	}
	args = append(args, "-O", out)

	if o.Gen3D {
		args = append(args, "--gen3d")
	}
	if o.Hydrogens {
		args = append(args, "-h")
	}
	if o.Forcefield != "" {
		args = append(args, "--minimize", "--ff", o.Forcefield)
	}
	return args
}

// ValidForcefield reports whether ff, already lower-cased, is a supported forcefield.
func ValidForcefield(ff string) bool {
	for _, f := range Forcefields {
		if f == ff {
			return true
		}
	}
	return false
}

// Convert runs obabel and checks that the output file was written.
func (b *Babel) Convert(in, out string, opts ConvertOptions) error {
	if opts.Forcefield != "" && !ValidForcefield(opts.Forcefield) {
		return errors.Wrapf(tool.ErrUnsupported, "forcefield %q, supported: %v", opts.Forcefield, Forcefields)
	}

	if _, err := tool.New(b.Bin, opts.Args(in, out)...).Run(); err != nil {
		return errors.Wrapf(err, "convert %s", in)
	}

	// obabel exits 0 even when it could not read a single molecule.
	if !tool.IsFile(out) {
		return errors.Wrapf(tool.ErrParse, "obabel wrote no output for %s", in)
	}
	return nil
}
