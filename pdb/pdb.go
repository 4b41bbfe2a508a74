// Package pdb reads atom records from PDB and PDBQT files.
package pdb

import (
	"fmt"
	"io/ioutil"
)

// Structure holds the coordinate records of a PDB or PDBQT file.
type Structure struct {
	Atoms     []*Atom  // ATOM records
	HetAtoms  []*Atom  // HETATM records
	HetGroups []string // distinct HETATM residue names, in order of appearance

	Chains      map[string]map[int64]*Residue // chain ID and residue number to residue
	TotalLength int64                         // number of residues over all chains

	LocalPath string // file the structure was read from, if any
}

// NewStructureFromRaw parses ATOM and HETATM records from raw file contents.
// This works on output files of the external tools as well as on inputs.
func NewStructureFromRaw(raw []byte) (*Structure, error) {
	s := &Structure{}

	s.Atoms = s.extractATMRecords(raw, "ATOM")
	s.HetAtoms = s.extractATMRecords(raw, "HETATM")
	if len(s.Atoms) == 0 && len(s.HetAtoms) == 0 {
		return nil, fmt.Errorf("no ATOM or HETATM records")
	}

	s.extractChains()
	return s, nil
}

// ReadFile parses the structure stored at path.
func ReadFile(path string) (*Structure, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read structure: %v", err)
	}

	s, err := NewStructureFromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v", path, err)
	}

	s.LocalPath = path
	return s, nil
}

// AllAtoms returns ATOM followed by HETATM records.
func (s *Structure) AllAtoms() []*Atom {
	all := make([]*Atom, 0, len(s.Atoms)+len(s.HetAtoms))
	all = append(all, s.Atoms...)
	return append(all, s.HetAtoms...)
}
