// Package p2rank predicts ligand binding pockets with P2Rank and reads its CSV report.
package p2rank

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tikz/dockmate/config"
	"github.com/tikz/dockmate/tool"
)

// Pocket is one row of the P2Rank predictions report.
type Pocket struct {
	Rank        int // 1-based row order of the report
	Center      [3]float64
	Name        string  // "pocket1", ...; empty when the column is absent
	Score       float64 // zero when the column is absent
	Probability float64 // zero when the column is absent
}

// PocketFinder runs P2Rank on a single PDB file.
type PocketFinder struct {
	cfg     *config.Config
	path    string
	threads int
	outDir  string

	pockets []Pocket
}

// NewPocketFinder checks that path is an existing .pdb file.
// threads <= 0 uses the number of CPUs.
func NewPocketFinder(path string, threads int, cfg *config.Config) (*PocketFinder, error) {
	abs, err := tool.RequireFile("PDB", path)
	if err != nil {
		return nil, err
	}
	if tool.Ext(abs) != "pdb" {
		return nil, errors.Wrapf(tool.ErrUnsupported, "pocket prediction needs a .pdb file, got %s", filepath.Base(abs))
	}

	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	return &PocketFinder{
		cfg:     cfg,
		path:    abs,
		threads: threads,
		outDir:  filepath.Join(cfg.TempDir, "p2rank_results", tool.Stem(abs)),
	}, nil
}

// OutputDir is the P2Rank output directory for this protein.
func (f *PocketFinder) OutputDir() string { return f.outDir }

// PredictionsPath is the CSV report P2Rank writes into OutputDir.
func (f *PocketFinder) PredictionsPath() string {
	return filepath.Join(f.outDir, filepath.Base(f.path)+"_predictions.csv")
}

// Args builds the prank command line.
func (f *PocketFinder) Args() []string {
	return []string{
		"predict",
		"-f", f.path,
		"-o", f.outDir,
		"-threads", strconv.Itoa(f.threads),
	}
}

// Run runs P2Rank and parses the predictions, best pocket first.
func (f *PocketFinder) Run() ([]Pocket, error) {
	f.pockets = nil

	if err := os.MkdirAll(f.outDir, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "create %s", f.outDir)
	}

	tool.Logger.Printf("p2rank: predicting pockets for %s", filepath.Base(f.path))
	if _, err := tool.New(f.cfg.P2Rank, f.Args()...).Run(); err != nil {
		return nil, errors.Wrap(err, "p2rank")
	}

	csvPath := f.PredictionsPath()
	file, err := os.Open(csvPath)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(tool.ErrParse, "prediction CSV not found: %s", csvPath)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()

	pockets, err := ParsePredictions(file)
	if err != nil {
		return nil, errors.Wrap(err, csvPath)
	}

	tool.Logger.Printf("p2rank: %d pockets", len(pockets))
	f.pockets = pockets
	return pockets, nil
}

// Pockets returns the result of the last successful Run.
func (f *PocketFinder) Pockets() []Pocket { return f.pockets }

// ParsePredictions reads a P2Rank predictions CSV. Column names are matched
// after trimming whitespace, since P2Rank pads them ("   center_x").
// Rows are ranked in file order.
func ParsePredictions(r io.Reader) ([]Pocket, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(tool.ErrNoResults, "empty predictions report")
	}
	if err != nil {
		return nil, errors.Wrapf(tool.ErrParse, "read header: %v", err)
	}

	cols := make(map[string]int)
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	var coordCols [3]int
	for i, name := range []string{"center_x", "center_y", "center_z"} {
		idx, ok := cols[name]
		if !ok {
			return nil, errors.Wrapf(tool.ErrParse, "column %s not found in header", name)
		}
		coordCols[i] = idx
	}

	var pockets []Pocket
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(tool.ErrParse, "row %d: %v", row, err)
		}

		p := Pocket{Rank: row}
		for i, idx := range coordCols {
			if idx >= len(record) {
				return nil, errors.Wrapf(tool.ErrParse, "coordinates at row %d: missing column", row)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return nil, errors.Wrapf(tool.ErrParse, "coordinates at row %d: %v", row, err)
			}
			p.Center[i] = v
		}

		p.Name = field(record, cols, "name")
		p.Score, _ = strconv.ParseFloat(field(record, cols, "score"), 64)
		p.Probability, _ = strconv.ParseFloat(field(record, cols, "probability"), 64)

		pockets = append(pockets, p)
	}

	if len(pockets) == 0 {
		return nil, errors.Wrap(tool.ErrNoResults, "no pocket centers found")
	}
	return pockets, nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// SaveReport copies the whole output directory to dir/<protein stem>,
// replacing an existing copy. Returns the target directory.
func (f *PocketFinder) SaveReport(dir string) (string, error) {
	if f.pockets == nil {
		return "", errors.Wrap(tool.ErrNotReady, "no P2Rank results, run Run first")
	}
	if info, err := os.Stat(f.outDir); err != nil || !info.IsDir() {
		return "", errors.Wrapf(tool.ErrNotReady, "P2Rank output folder not found: %s", f.outDir)
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", errors.WithStack(err)
	}

	target := filepath.Join(dir, filepath.Base(f.outDir))
	if err := tool.CopyDir(f.outDir, target); err != nil {
		return "", errors.Wrap(err, "copy P2Rank report")
	}
	return target, nil
}

// WriteCSV writes pockets as rank,center_x,center_y,center_z.
func WriteCSV(w io.Writer, pockets []Pocket) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "center_x", "center_y", "center_z"}); err != nil {
		return errors.WithStack(err)
	}
	for _, p := range pockets {
		rec := []string{strconv.Itoa(p.Rank)}
		for _, v := range p.Center {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return errors.WithStack(err)
		}
	}
	cw.Flush()
	return errors.WithStack(cw.Error())
}

// Select returns the pocket with the given rank.
func Select(pockets []Pocket, rank int) (Pocket, error) {
	for _, p := range pockets {
		if p.Rank == rank {
			return p, nil
		}
	}
	return Pocket{}, errors.Wrapf(tool.ErrInvalidInput, "no pocket with rank %d (%d found)", rank, len(pockets))
}

func (p Pocket) String() string {
	return fmt.Sprintf("%d\t%.3f\t%.3f\t%.3f", p.Rank, p.Center[0], p.Center[1], p.Center[2])
}
