package pdb

import (
	"regexp"
	"strconv"
	"strings"
)

// Atom represents a single atom in the structure.
// It contains the columns shared by ATOM and HETATM records of PDB and PDBQT files.
type Atom struct {
	Number        int64
	Name          string
	Residue       string
	Chain         string
	ResidueNumber int64
	X             float64
	Y             float64
	Z             float64
	Occupancy     float64
	BFactor       float64
	Element       string
}

// extractATMRecords extracts either ATOM or HETATM records.
func (s *Structure) extractATMRecords(raw []byte, recordName string) []*Atom {
	var atoms []*Atom

	r, _ := regexp.Compile("(?m)^" + recordName + ".*$")
	matches := r.FindAllString(string(raw), -1)

	var lastRes string
	for _, match := range matches {
		match = strings.TrimRight(match, "\r")
		var atom Atom

		// https://www.wwpdb.org/documentation/file-format-content/format23/sect9.html#ATOM
		atom.Number, _ = strconv.ParseInt(column(match, 6, 11), 10, 64)
		atom.Name = column(match, 12, 16)
		atom.Residue = column(match, 17, 20)
		atom.Chain = column(match, 21, 22)
		atom.ResidueNumber, _ = strconv.ParseInt(column(match, 22, 26), 10, 64)
		atom.X, _ = strconv.ParseFloat(column(match, 30, 38), 64)
		atom.Y, _ = strconv.ParseFloat(column(match, 38, 46), 64)
		atom.Z, _ = strconv.ParseFloat(column(match, 46, 54), 64)
		atom.Occupancy, _ = strconv.ParseFloat(column(match, 54, 60), 64)
		atom.BFactor, _ = strconv.ParseFloat(column(match, 60, 66), 64)
		// PDBQT puts the AutoDock atom type where PDB has the element.
		atom.Element = column(match, 76, 79)

		atoms = append(atoms, &atom)

		if recordName == "HETATM" && atom.Residue != lastRes {
			lastRes = atom.Residue
			exists := false
			for _, het := range s.HetGroups {
				if het == lastRes {
					exists = true
				}
			}
			if !exists {
				s.HetGroups = append(s.HetGroups, lastRes)
			}
		}
	}

	return atoms
}

// column returns the trimmed text between start and end, clipped to the line length.
func column(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[start:end])
}
