package pdb

import (
	"errors"
	"math"
)

// Box is a docking search space: a center and edge lengths along x, y and z.
type Box struct {
	Center [3]float64
	Size   [3]float64
}

// Distance returns the distance between a pair of atoms.
func Distance(atom1 *Atom, atom2 *Atom) float64 {
	return math.Sqrt(math.Pow(atom1.X-atom2.X, 2) + math.Pow(atom1.Y-atom2.Y, 2) + math.Pow(atom1.Z-atom2.Z, 2))
}

// BoundingBox returns the smallest axis-aligned box enclosing the atoms,
// grown by padding on every side.
func BoundingBox(atoms []*Atom, padding float64) (Box, error) {
	if len(atoms) == 0 {
		return Box{}, errors.New("no atoms to enclose")
	}

	min := [3]float64{atoms[0].X, atoms[0].Y, atoms[0].Z}
	max := min
	for _, a := range atoms[1:] {
		for i, v := range [3]float64{a.X, a.Y, a.Z} {
			min[i] = math.Min(min[i], v)
			max[i] = math.Max(max[i], v)
		}
	}

	var box Box
	for i := range box.Center {
		box.Center[i] = (min[i] + max[i]) / 2
		box.Size[i] = max[i] - min[i] + 2*padding
	}
	return box, nil
}

// Autobox reads a reference structure, typically a co-crystallized ligand,
// and returns the padded box around all of its atoms.
func Autobox(path string, padding float64) (Box, error) {
	s, err := ReadFile(path)
	if err != nil {
		return Box{}, err
	}
	return BoundingBox(s.AllAtoms(), padding)
}
