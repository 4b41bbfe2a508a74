// Package vina runs AutoDock Vina and parses its result table.
package vina

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tikz/dockmate/config"
	"github.com/tikz/dockmate/tool"
)

// Pose is one binding mode from the Vina result table.
type Pose struct {
	Mode           int
	Affinity       float64 // kcal/mol
	RMSDLowerBound float64
	RMSDUpperBound float64
}

// CSVHeader mirrors the columns of the Vina result table.
var CSVHeader = []string{"mode", "affinity_kcal_mol", "rmsd_lb", "rmsd_ub"}

// Options are passed through to Vina. Zero values take the defaults.
type Options struct {
	Exhaustiveness int    // default 8
	NumModes       int    // default 9
	CPU            int    // default number of CPUs
	Seed           *int64 // nil lets Vina pick a random seed
}

// DefaultOptions returns Vina's usual settings using every CPU.
func DefaultOptions() Options {
	return Options{Exhaustiveness: 8, NumModes: 9, CPU: runtime.NumCPU()}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Exhaustiveness <= 0 {
		o.Exhaustiveness = d.Exhaustiveness
	}
	if o.NumModes <= 0 {
		o.NumModes = d.NumModes
	}
	if o.CPU <= 0 {
		o.CPU = d.CPU
	}
	return o
}

// Docking is a single receptor/ligand docking job.
type Docking struct {
	cfg      *config.Config
	receptor string
	ligand   string
	center   [3]float64
	size     [3]float64
	opts     Options

	baseName string
	outDir   string

	output string
	poses  []Pose
}

// NewDocking validates the search box and the input files.
// center and size must hold exactly three finite numbers each; they are
// checked before the filesystem is touched.
func NewDocking(receptor, ligand string, center, size []float64, opts Options, cfg *config.Config) (*Docking, error) {
	c, err := triple("center", center)
	if err != nil {
		return nil, err
	}
	s, err := triple("size", size)
	if err != nil {
		return nil, err
	}

	receptor, err = tool.RequireFile("receptor", receptor)
	if err != nil {
		return nil, err
	}
	ligand, err = tool.RequireFile("ligand", ligand)
	if err != nil {
		return nil, err
	}

	outDir, err := cfg.Dir("vina_results")
	if err != nil {
		return nil, err
	}

	return &Docking{
		cfg:      cfg,
		receptor: receptor,
		ligand:   ligand,
		center:   c,
		size:     s,
		opts:     opts.withDefaults(),
		baseName: tool.Stem(receptor) + "_" + tool.Stem(ligand) + "_docked",
		outDir:   outDir,
	}, nil
}

func triple(name string, v []float64) ([3]float64, error) {
	var t [3]float64
	if len(v) != 3 {
		return t, errors.Wrapf(tool.ErrInvalidInput, "%s must have 3 values, got %d", name, len(v))
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return t, errors.Wrapf(tool.ErrInvalidInput, "%s[%d] is not a finite number", name, i)
		}
		t[i] = x
	}
	return t, nil
}

// BaseName is "<receptor stem>_<ligand stem>_docked".
func (d *Docking) BaseName() string { return d.baseName }

// PosesPath is the PDBQT file Vina writes the poses to.
func (d *Docking) PosesPath() string { return filepath.Join(d.outDir, d.baseName+".pdbqt") }

// LogPath holds Vina's raw stdout.
func (d *Docking) LogPath() string { return filepath.Join(d.outDir, d.baseName+".log") }

// CSVPath holds the parsed result table.
func (d *Docking) CSVPath() string { return filepath.Join(d.outDir, d.baseName+".csv") }

// Args builds the vina command line.
func (d *Docking) Args() []string {
	args := []string{
		"--receptor", d.receptor,
		"--ligand", d.ligand,
		"--center_x", formatArg(d.center[0]),
		"--center_y", formatArg(d.center[1]),
		"--center_z", formatArg(d.center[2]),
		"--size_x", formatArg(d.size[0]),
		"--size_y", formatArg(d.size[1]),
		"--size_z", formatArg(d.size[2]),
		"--out", d.PosesPath(),
		"--exhaustiveness", strconv.Itoa(d.opts.Exhaustiveness),
		"--num_modes", strconv.Itoa(d.opts.NumModes),
		"--cpu", strconv.Itoa(d.opts.CPU),
	}
	if d.opts.Seed != nil {
		args = append(args, "--seed", strconv.FormatInt(*d.opts.Seed, 10))
	}
	return args
}

func formatArg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Run docks the ligand, writes the log and CSV next to the poses file and
// returns the parsed poses. Vina failures are not retried.
func (d *Docking) Run() ([]Pose, error) {
	d.output = ""
	d.poses = nil

	tool.Logger.Printf("vina: docking %s", d.baseName)
	out, err := tool.New(d.cfg.Vina, d.Args()...).Run()
	if err != nil {
		return nil, errors.Wrap(err, "AutoDock Vina")
	}
	d.output = out.Stdout

	if d.output != "" {
		if err := os.WriteFile(d.LogPath(), []byte(d.output), 0644); err != nil {
			return nil, errors.Wrap(err, "write vina log")
		}
	}

	poses, err := ParseOutput(d.output)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(d.CSVPath())
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := WriteCSV(f, poses); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	tool.Logger.Printf("vina: %d poses, best %.2f kcal/mol", len(poses), poses[0].Affinity)
	d.poses = poses
	return poses, nil
}

// Output returns Vina's stdout from the last Run.
func (d *Docking) Output() string { return d.output }

// Poses returns the result of the last successful Run.
func (d *Docking) Poses() []Pose { return d.poses }

// ParseOutput extracts the result table from Vina's stdout:
//
//	mode |   affinity | dist from best mode
//	     | (kcal/mol) | rmsd l.b.| rmsd u.b.
//	-----+------------+----------+----------
//	   1       -7.5          0          0
//
// Rows are read after the first line starting with "mode". Lines that are not
// exactly four numeric fields are skipped.
func ParseOutput(text string) ([]Pose, error) {
	var poses []Pose
	header := false

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "mode") {
			header = true
			continue
		}
		if !header || trimmed == "" || strings.HasPrefix(line, "-") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			continue
		}
		pose, ok := parsePose(fields)
		if !ok {
			continue
		}
		poses = append(poses, pose)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(tool.ErrParse, "read vina output: %v", err)
	}

	if len(poses) == 0 {
		return nil, errors.Wrap(tool.ErrNoResults, "no docking results found in Vina output")
	}
	return poses, nil
}

func parsePose(fields []string) (Pose, bool) {
	mode, err := strconv.Atoi(fields[0])
	if err != nil {
		return Pose{}, false
	}
	var v [3]float64
	for i, f := range fields[1:] {
		if v[i], err = strconv.ParseFloat(f, 64); err != nil {
			return Pose{}, false
		}
	}
	return Pose{Mode: mode, Affinity: v[0], RMSDLowerBound: v[1], RMSDUpperBound: v[2]}, true
}

// WriteCSV writes poses under CSVHeader. Floats always carry a decimal point.
func WriteCSV(w io.Writer, poses []Pose) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return errors.WithStack(err)
	}
	for _, p := range poses {
		rec := []string{
			strconv.Itoa(p.Mode),
			formatFloat(p.Affinity),
			formatFloat(p.RMSDLowerBound),
			formatFloat(p.RMSDUpperBound),
		}
		if err := cw.Write(rec); err != nil {
			return errors.WithStack(err)
		}
	}
	cw.Flush()
	return errors.WithStack(cw.Error())
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// SaveResults copies the poses, log and CSV into dir. Returns the paths written.
func (d *Docking) SaveResults(dir string) ([]string, error) {
	files := []string{d.PosesPath(), d.LogPath(), d.CSVPath()}
	if d.poses == nil {
		return nil, errors.Wrap(tool.ErrNotReady, "docking results are missing, run Run first")
	}
	for _, f := range files {
		if !tool.IsFile(f) {
			return nil, errors.Wrapf(tool.ErrNotReady, "docking result %s is missing", filepath.Base(f))
		}
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.WithStack(err)
	}

	var saved []string
	for _, f := range files {
		dst, err := tool.CopyFile(f, filepath.Join(dir, filepath.Base(f)))
		if err != nil {
			return nil, err
		}
		saved = append(saved, dst)
	}
	return saved, nil
}
