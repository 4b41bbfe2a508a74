// Package interaction finds the receptor residues a docked ligand pose touches.
package interaction

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"math"
	"sort"

	"github.com/tikz/dockmate/pdb"
)

// Contact is a receptor residue near the ligand, with the closest atom pair distance.
type Contact struct {
	Residue  *pdb.Residue
	Distance float64
}

func (c Contact) String() string {
	return fmt.Sprintf("%s:%s%d (%.2f)", c.Residue.Chain, c.Residue.Name3, c.Residue.Position, c.Distance)
}

// ResidueDistance returns the distance between a residue and a set of atoms, of the closest pair of atoms.
func ResidueDistance(r *pdb.Residue, atoms []*pdb.Atom) float64 {
	min := math.Inf(1)
	for _, a1 := range r.Atoms {
		for _, a2 := range atoms {
			if d := pdb.Distance(a1, a2); d < min {
				min = d
			}
		}
	}
	return min
}

// Contacts receives a receptor, ligand atoms and a cutoff distance, and returns the
// receptor residues with any atom closer than the cutoff, sorted by chain and position.
func Contacts(receptor *pdb.Structure, ligand []*pdb.Atom, cutoff float64) []Contact {
	var contacts []Contact
	for _, chain := range receptor.Chains {
		for _, res := range chain {
			if d := ResidueDistance(res, ligand); d < cutoff {
				contacts = append(contacts, Contact{Residue: res, Distance: d})
			}
		}
	}

	sort.Slice(contacts, func(i, j int) bool {
		ri, rj := contacts[i].Residue, contacts[j].Residue
		if ri.Chain != rj.Chain {
			return ri.Chain < rj.Chain
		}
		return ri.Position < rj.Position
	})
	return contacts
}

// ReadPose returns the atoms of the first MODEL of a multi-model PDBQT, as
// written by docking. A file without MODEL records is read whole.
func ReadPose(path string) ([]*pdb.Atom, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pose: %v", err)
	}

	if i := bytes.Index(raw, []byte("ENDMDL")); i >= 0 {
		raw = raw[:i]
	}

	s, err := pdb.NewStructureFromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("parse pose %s: %v", path, err)
	}
	return s.AllAtoms(), nil
}
