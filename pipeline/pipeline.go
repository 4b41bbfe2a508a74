// Package pipeline chains protein preparation, ligand preparation, pocket
// selection and docking.
package pipeline

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/tikz/dockmate/config"
	"github.com/tikz/dockmate/interaction"
	"github.com/tikz/dockmate/ligand"
	"github.com/tikz/dockmate/p2rank"
	"github.com/tikz/dockmate/pdb"
	"github.com/tikz/dockmate/protein"
	"github.com/tikz/dockmate/tool"
	"github.com/tikz/dockmate/vina"
)

// DefaultSize is the edge of the search box in Angstrom when none is given.
const DefaultSize = 20.0

// Request describes a docking run. The box center comes from Center when set,
// else from the atoms of Autobox, else from the P2Rank pocket PocketRank.
type Request struct {
	ProteinPath string
	LigandPath  string
	OutDir      string

	Center     []float64
	Size       []float64 // DefaultSize cube when empty; overrides the Autobox extent
	Autobox    string
	Padding    float64
	PocketRank int // 0 means the best pocket
	Threads    int

	// ContactCutoff lists receptor residues within this distance of the best pose; 0 skips it.
	ContactCutoff float64

	ProteinOptions protein.Options
	LigandOptions  ligand.Options
	VinaOptions    vina.Options
}

// NewRequest fills the preparation and docking options with their defaults.
func NewRequest(proteinPath, ligandPath, outDir string) Request {
	return Request{
		ProteinPath:    proteinPath,
		LigandPath:     ligandPath,
		OutDir:         outDir,
		Padding:        4,
		ProteinOptions: protein.DefaultOptions(),
		LigandOptions:  ligand.DefaultOptions(),
		VinaOptions:    vina.DefaultOptions(),
	}
}

// Result lists what a run produced.
type Result struct {
	Receptor string // saved receptor PDBQT
	Ligand   string // saved ligand PDBQT
	Box      pdb.Box
	Pocket   *p2rank.Pocket // set when the box came from P2Rank
	Report   string         // saved P2Rank report directory
	Poses    []vina.Pose
	Files    []string // saved docking poses, log and CSV
	Contacts []interaction.Contact
}

// Session holds a receptor prepared once and its search box, so several
// ligands can be docked against it.
type Session struct {
	cfg     *config.Config
	req     Request
	protein *protein.Protein

	receptor  string
	structure *pdb.Structure // read on first contact search
	box       pdb.Box
	pocket    *p2rank.Pocket
	report    string
}

// NewSession prepares the protein, saves its PDBQT into req.OutDir and
// resolves the search box.
func NewSession(cfg *config.Config, req Request) (*Session, error) {
	if req.OutDir == "" {
		return nil, errors.Wrap(tool.ErrInvalidInput, "output directory is required")
	}
	if err := os.MkdirAll(req.OutDir, os.ModePerm); err != nil {
		return nil, errors.WithStack(err)
	}

	p, err := protein.NewProtein(req.ProteinPath, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Prepare(req.ProteinOptions); err != nil {
		return nil, errors.Wrap(err, "prepare protein")
	}
	receptor, err := p.SavePDBQT(req.OutDir)
	if err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg, req: req, protein: p, receptor: receptor}
	if err := s.resolveBox(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) resolveBox() error {
	size := s.req.Size
	if len(size) == 0 {
		size = []float64{DefaultSize, DefaultSize, DefaultSize}
	}
	if len(size) != 3 {
		return errors.Wrapf(tool.ErrInvalidInput, "size must have 3 values, got %d", len(size))
	}

	switch {
	case len(s.req.Center) > 0:
		if len(s.req.Center) != 3 {
			return errors.Wrapf(tool.ErrInvalidInput, "center must have 3 values, got %d", len(s.req.Center))
		}
		copy(s.box.Center[:], s.req.Center)
		copy(s.box.Size[:], size)

	case s.req.Autobox != "":
		box, err := pdb.Autobox(s.req.Autobox, s.req.Padding)
		if err != nil {
			return errors.Wrap(err, "autobox")
		}
		s.box = box
		if len(s.req.Size) > 0 {
			copy(s.box.Size[:], size)
		}

	default:
		finder, err := p2rank.NewPocketFinder(s.protein.PDBPath(), s.req.Threads, s.cfg)
		if err != nil {
			return err
		}
		pockets, err := finder.Run()
		if err != nil {
			return errors.Wrap(err, "predict pockets")
		}
		rank := s.req.PocketRank
		if rank <= 0 {
			rank = 1
		}
		pocket, err := p2rank.Select(pockets, rank)
		if err != nil {
			return err
		}
		report, err := finder.SaveReport(s.req.OutDir)
		if err != nil {
			return err
		}
		s.pocket = &pocket
		s.report = report
		s.box.Center = pocket.Center
		copy(s.box.Size[:], size)
	}

	tool.Logger.Printf("pipeline: box center %.3f %.3f %.3f size %.1f %.1f %.1f",
		s.box.Center[0], s.box.Center[1], s.box.Center[2], s.box.Size[0], s.box.Size[1], s.box.Size[2])
	return nil
}

// Box returns the resolved search box.
func (s *Session) Box() pdb.Box { return s.box }

// Receptor returns the saved receptor PDBQT.
func (s *Session) Receptor() string { return s.receptor }

// Dock prepares the ligand at path, docks it into the session box and saves
// the ligand PDBQT and docking results into the output directory. The ligand
// file name must differ from the receptor's apart from the extension.
func (s *Session) Dock(path string) (*Result, error) {
	// both PDBQT files are named after their stems in the temp dir
	if tool.Stem(path) == tool.Stem(s.protein.Path()) {
		return nil, errors.Wrapf(tool.ErrInvalidInput, "ligand %s has the same name as the receptor", filepath.Base(path))
	}
	l, err := ligand.NewLigand(path, s.cfg)
	if err != nil {
		return nil, err
	}
	if err := l.Prepare(s.req.LigandOptions); err != nil {
		return nil, errors.Wrap(err, "prepare ligand")
	}
	ligandOut, err := l.SavePDBQT(s.req.OutDir)
	if err != nil {
		return nil, err
	}

	d, err := vina.NewDocking(s.protein.PDBQTPath(), l.PDBQTPath(),
		s.box.Center[:], s.box.Size[:], s.req.VinaOptions, s.cfg)
	if err != nil {
		return nil, err
	}
	poses, err := d.Run()
	if err != nil {
		return nil, errors.Wrap(err, "dock")
	}
	files, err := d.SaveResults(s.req.OutDir)
	if err != nil {
		return nil, err
	}

	tool.Logger.Printf("pipeline: %s docked, best affinity %.2f kcal/mol", filepath.Base(path), poses[0].Affinity)
	res := &Result{
		Receptor: s.receptor,
		Ligand:   ligandOut,
		Box:      s.box,
		Pocket:   s.pocket,
		Report:   s.report,
		Poses:    poses,
		Files:    files,
	}

	if s.req.ContactCutoff > 0 {
		if res.Contacts, err = s.contacts(d.PosesPath()); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Session) contacts(posesPath string) ([]interaction.Contact, error) {
	if s.structure == nil {
		st, err := pdb.ReadFile(s.protein.PDBPath())
		if err != nil {
			return nil, errors.Wrapf(tool.ErrParse, "receptor: %v", err)
		}
		s.structure = st
	}
	pose, err := interaction.ReadPose(posesPath)
	if err != nil {
		return nil, errors.Wrapf(tool.ErrParse, "%v", err)
	}
	return interaction.Contacts(s.structure, pose, s.req.ContactCutoff), nil
}

// Run prepares both molecules, resolves the box, docks and saves everything
// into req.OutDir.
func Run(cfg *config.Config, req Request) (*Result, error) {
	s, err := NewSession(cfg, req)
	if err != nil {
		return nil, err
	}
	return s.Dock(req.LigandPath)
}
