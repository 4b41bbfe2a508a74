package pdb

import (
	"strings"
)

var residueNames = [...][3]string{
	{"Alanine", "Ala", "A"},
	{"Arginine", "Arg", "R"},
	{"Asparagine", "Asn", "N"},
	{"Aspartic acid", "Asp", "D"},
	{"Cysteine", "Cys", "C"},
	{"Glutamic acid", "Glu", "E"},
	{"Glutamine", "Gln", "Q"},
	{"Glycine", "Gly", "G"},
	{"Histidine", "His", "H"},
	{"Isoleucine", "Ile", "I"},
	{"Leucine", "Leu", "L"},
	{"Lysine", "Lys", "K"},
	{"Methionine", "Met", "M"},
	{"Phenylalanine", "Phe", "F"},
	{"Proline", "Pro", "P"},
	{"Serine", "Ser", "S"},
	{"Threonine", "Thr", "T"},
	{"Tryptophan", "Trp", "W"},
	{"Tyrosine", "Tyr", "Y"},
	{"Valine", "Val", "V"},
}

// Residue represents a single residue from the structure.
type Residue struct {
	Chain    string
	Position int64
	Name     string
	Name1    string
	Name3    string
	Atoms    []*Atom
}

// AminoacidNames receives a name and returns all its representations:
// full name, three letter and one letter abbreviation.
// Unknown names come back as (input, "Unk", "X").
func AminoacidNames(input string) (string, string, string) {
	s := strings.ToLower(input)
	for _, res := range residueNames {
		for _, n := range res {
			if strings.ToLower(n) == s {
				return res[0], res[1], res[2]
			}
		}
	}

	return input, "Unk", "X"
}

// IsStandard reports whether the residue is one of the 20 standard aminoacids.
func (r *Residue) IsStandard() bool {
	return r.Name1 != "X"
}

// NewResidue constructs a new residue given a chain, position and aminoacid name.
func NewResidue(chain string, pos int64, input string) *Residue {
	name, abbrv3, abbrv1 := AminoacidNames(input)

	return &Residue{
		Chain:    chain,
		Position: pos,
		Name:     name,
		Name1:    abbrv1,
		Name3:    abbrv3,
	}
}

// extractChains groups ATOM records into residues per chain.
func (s *Structure) extractChains() {
	chains := make(map[string]map[int64]*Residue)

	for _, atom := range s.Atoms {
		chain, ok := chains[atom.Chain]
		if !ok {
			chain = make(map[int64]*Residue)
			chains[atom.Chain] = chain
		}

		res, ok := chain[atom.ResidueNumber]
		if !ok {
			res = NewResidue(atom.Chain, atom.ResidueNumber, atom.Residue)
			chain[atom.ResidueNumber] = res
		}
		res.Atoms = append(res.Atoms, atom)
	}

	s.Chains = chains
	s.TotalLength = 0
	for _, chain := range s.Chains {
		s.TotalLength += int64(len(chain))
	}
}

// NonstandardResidues returns the number of ATOM residues that are not standard aminoacids.
func (s *Structure) NonstandardResidues() int {
	n := 0
	for _, chain := range s.Chains {
		for _, res := range chain {
			if !res.IsStandard() {
				n++
			}
		}
	}
	return n
}
