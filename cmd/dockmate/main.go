package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tikz/dockmate/config"
	"github.com/tikz/dockmate/fetch"
	"github.com/tikz/dockmate/ligand"
	"github.com/tikz/dockmate/p2rank"
	"github.com/tikz/dockmate/pipeline"
	"github.com/tikz/dockmate/protein"
	"github.com/tikz/dockmate/tool"
	"github.com/tikz/dockmate/vina"
	"github.com/tikz/dockmate/watch"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "protein":
		runProtein(os.Args[2:])
	case "ligand":
		runLigand(os.Args[2:])
	case "pockets":
		runPockets(os.Args[2:])
	case "dock":
		runDock(os.Args[2:])
	case "run":
		runPipeline(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "fetch":
		runFetch(os.Args[2:])
	case "clean":
		runClean(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "dockmate: protein-ligand docking with Vina, P2Rank, Open Babel, PDBFixer and MGLTools\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  dockmate protein -in <FILE> [-out <DIR>] [-ph <PH>] [-keep-water] [-no-hydrogens]\n")
	fmt.Fprintf(os.Stderr, "  dockmate ligand -in <FILE> [-out <DIR>] [-minimize <mmff94|mmff94s|uff|gaff>]\n")
	fmt.Fprintf(os.Stderr, "  dockmate pockets -in <FILE.pdb> [-out <DIR>] [-threads <N>]\n")
	fmt.Fprintf(os.Stderr, "  dockmate dock -receptor <PDBQT> -ligand <PDBQT> -center <X,Y,Z> [-size <X,Y,Z>] [-out <DIR>] [vina flags]\n")
	fmt.Fprintf(os.Stderr, "  dockmate run -protein <FILE> -ligand <FILE> -out <DIR> [-center <X,Y,Z> | -autobox <FILE> | -pocket <RANK>] [-size <X,Y,Z>]\n")
	fmt.Fprintf(os.Stderr, "  dockmate watch -protein <FILE> -dir <DIR> -out <DIR> [-center <X,Y,Z> | -autobox <FILE> | -pocket <RANK>]\n")
	fmt.Fprintf(os.Stderr, "  dockmate fetch pdb|sdf <ID|NAME> [-out <DIR>]\n")
	fmt.Fprintf(os.Stderr, "  dockmate clean\n\n")
	fmt.Fprintf(os.Stderr, "Every command accepts -v to log tool invocations to stderr.\n")
	fmt.Fprintf(os.Stderr, "Env (or .env): DOCKMATE_HOME, DOCKMATE_TEMP, VINA_PATH, P2RANK_PATH, OBABEL_PATH, PDBFIXER_PATH,\n")
	fmt.Fprintf(os.Stderr, "  MGL_PYTHON, PREPARE_RECEPTOR_SCRIPT, PREPARE_LIGAND_SCRIPT, DOCKMATE_VERBOSE\n")
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "dockmate: "+format+"\n", args...)
	os.Exit(1)
}

// setup parses fs, loads the configuration and enables logging when asked.
func setup(fs *flag.FlagSet, args []string) *config.Config {
	verbose := fs.Bool("v", false, "Log tool invocations to stderr")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fatalf("config: %v", err)
	}
	if *verbose || cfg.Verbose {
		tool.Logger = log.New(os.Stderr, "dockmate: ", log.Ltime)
	}
	return cfg
}

func requireFlags(fs *flag.FlagSet, names ...string) {
	for _, name := range names {
		if fs.Lookup(name).Value.String() == "" {
			fmt.Fprintf(os.Stderr, "missing -%s\n", name)
			fs.Usage()
			os.Exit(2)
		}
	}
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// parseTriple reads "x,y,z". An empty string gives nil.
func parseTriple(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, errors.Wrapf(tool.ErrInvalidInput, "%q: want 3 comma-separated numbers", s)
	}
	v := make([]float64, 3)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(tool.ErrInvalidInput, "%q: %v", s, err)
		}
		v[i] = f
	}
	return v, nil
}

func runProtein(args []string) {
	fs := flag.NewFlagSet("protein", flag.ExitOnError)
	in := fs.String("in", "", "Protein structure (pdb, mol2, sdf, pdbqt, ent, xyz)")
	out := fs.String("out", ".", "Where to save the PDBQT")
	ph := fs.Float64("ph", 7.4, "pH for protonation")
	keepWater := fs.Bool("keep-water", false, "Keep water molecules")
	noH := fs.Bool("no-hydrogens", false, "Do not add hydrogens")
	cfg := setup(fs, args)
	requireFlags(fs, "in")

	p, err := protein.NewProtein(*in, cfg)
	if err != nil {
		fatalf("%v", err)
	}
	opts := protein.DefaultOptions()
	opts.PH = *ph
	opts.RemoveWater = !*keepWater
	opts.AddHydrogens = !*noH
	if err := p.Prepare(opts); err != nil {
		fatalf("prepare protein: %v", err)
	}
	path, err := p.SavePDBQT(*out)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(path)
}

func runLigand(args []string) {
	fs := flag.NewFlagSet("ligand", flag.ExitOnError)
	in := fs.String("in", "", "Ligand file (mol2, sdf, pdb, mol, smi)")
	out := fs.String("out", ".", "Where to save the PDBQT")
	minimize := fs.String("minimize", "", "Forcefield for energy minimization")
	cfg := setup(fs, args)
	requireFlags(fs, "in")

	l, err := ligand.NewLigand(*in, cfg)
	if err != nil {
		fatalf("%v", err)
	}
	opts := ligand.DefaultOptions()
	opts.Minimize = *minimize
	if err := l.Prepare(opts); err != nil {
		fatalf("prepare ligand: %v", err)
	}
	path, err := l.SavePDBQT(*out)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(path)
}

func runPockets(args []string) {
	fs := flag.NewFlagSet("pockets", flag.ExitOnError)
	in := fs.String("in", "", "Protein PDB file")
	out := fs.String("out", "", "Copy the P2Rank report into this directory")
	threads := fs.Int("threads", 0, "P2Rank threads, 0 for all CPUs")
	cfg := setup(fs, args)
	requireFlags(fs, "in")

	f, err := p2rank.NewPocketFinder(*in, *threads, cfg)
	if err != nil {
		fatalf("%v", err)
	}
	pockets, err := f.Run()
	if err != nil {
		fatalf("predict pockets: %v", err)
	}
	if err := p2rank.WriteCSV(os.Stdout, pockets); err != nil {
		fatalf("%v", err)
	}
	if *out != "" {
		dir, err := f.SaveReport(*out)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Fprintf(os.Stderr, "report saved to %s\n", dir)
	}
}

func vinaFlags(fs *flag.FlagSet) func() vina.Options {
	d := vina.DefaultOptions()
	exhaustiveness := fs.Int("exhaustiveness", d.Exhaustiveness, "Vina search exhaustiveness")
	modes := fs.Int("num-modes", d.NumModes, "Number of poses to report")
	cpu := fs.Int("cpu", d.CPU, "CPUs for Vina")
	seed := fs.Int64("seed", 0, "Random seed, random when unset")
	return func() vina.Options {
		opts := vina.Options{Exhaustiveness: *exhaustiveness, NumModes: *modes, CPU: *cpu}
		if isSet(fs, "seed") {
			opts.Seed = seed
		}
		return opts
	}
}

func runDock(args []string) {
	fs := flag.NewFlagSet("dock", flag.ExitOnError)
	receptor := fs.String("receptor", "", "Receptor PDBQT")
	lig := fs.String("ligand", "", "Ligand PDBQT")
	center := fs.String("center", "", "Box center x,y,z")
	size := fs.String("size", "20,20,20", "Box size x,y,z in Angstrom")
	out := fs.String("out", "", "Copy poses, log and CSV into this directory")
	opts := vinaFlags(fs)
	cfg := setup(fs, args)
	requireFlags(fs, "receptor", "ligand", "center")

	c, err := parseTriple(*center)
	if err != nil {
		fatalf("-center: %v", err)
	}
	s, err := parseTriple(*size)
	if err != nil {
		fatalf("-size: %v", err)
	}

	d, err := vina.NewDocking(*receptor, *lig, c, s, opts(), cfg)
	if err != nil {
		fatalf("%v", err)
	}
	poses, err := d.Run()
	if err != nil {
		fatalf("dock: %v", err)
	}
	if err := vina.WriteCSV(os.Stdout, poses); err != nil {
		fatalf("%v", err)
	}
	if *out != "" {
		files, err := d.SaveResults(*out)
		if err != nil {
			fatalf("%v", err)
		}
		for _, f := range files {
			fmt.Fprintln(os.Stderr, f)
		}
	}
}

// boxFlags registers the search box flags shared by run and watch.
func boxFlags(fs *flag.FlagSet, req *pipeline.Request) func() {
	center := fs.String("center", "", "Box center x,y,z")
	size := fs.String("size", "", "Box size x,y,z in Angstrom (default 20 cube)")
	fs.StringVar(&req.Autobox, "autobox", "", "Center the box on the atoms of this structure")
	fs.Float64Var(&req.Padding, "padding", req.Padding, "Autobox padding in Angstrom")
	fs.IntVar(&req.PocketRank, "pocket", 1, "P2Rank pocket to dock into")
	fs.IntVar(&req.Threads, "threads", 0, "P2Rank threads, 0 for all CPUs")
	fs.Float64Var(&req.ContactCutoff, "contacts", 4, "List receptor residues within this distance of the best pose, 0 to skip")
	opts := vinaFlags(fs)

	return func() {
		var err error
		if req.Center, err = parseTriple(*center); err != nil {
			fatalf("-center: %v", err)
		}
		if req.Size, err = parseTriple(*size); err != nil {
			fatalf("-size: %v", err)
		}
		req.VinaOptions = opts()
	}
}

func runPipeline(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	req := pipeline.NewRequest("", "", "")
	fs.StringVar(&req.ProteinPath, "protein", "", "Protein structure")
	fs.StringVar(&req.LigandPath, "ligand", "", "Ligand file")
	fs.StringVar(&req.OutDir, "out", "", "Output directory")
	box := boxFlags(fs, &req)
	cfg := setup(fs, args)
	requireFlags(fs, "protein", "ligand", "out")
	box()

	res, err := pipeline.Run(cfg, req)
	if err != nil {
		fatalf("%v", err)
	}
	if res.Pocket != nil {
		fmt.Fprintf(os.Stderr, "pocket %s\n", res.Pocket)
	}
	if err := vina.WriteCSV(os.Stdout, res.Poses); err != nil {
		fatalf("%v", err)
	}
	for _, c := range res.Contacts {
		fmt.Fprintf(os.Stderr, "contact %s\n", c)
	}
}

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	req := pipeline.NewRequest("", "", "")
	fs.StringVar(&req.ProteinPath, "protein", "", "Protein structure")
	dir := fs.String("dir", "", "Directory to watch for ligand files")
	fs.StringVar(&req.OutDir, "out", "", "Output directory")
	box := boxFlags(fs, &req)
	cfg := setup(fs, args)
	requireFlags(fs, "protein", "dir", "out")
	box()

	session, err := pipeline.NewSession(cfg, req)
	if err != nil {
		fatalf("%v", err)
	}
	w, err := watch.New(session)
	if err != nil {
		fatalf("%v", err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = w.Run(ctx, *dir, func(ev watch.Event) {
		switch {
		case ev.Err != nil:
			fmt.Fprintf(os.Stderr, "%s: %v\n", ev.Path, ev.Err)
		case ev.Skipped:
			fmt.Fprintf(os.Stderr, "%s: already docked\n", ev.Path)
		default:
			fmt.Printf("%s\t%.2f\n", ev.Path, ev.Result.Poses[0].Affinity)
		}
	})
	if err != nil {
		fatalf("%v", err)
	}
}

func runFetch(args []string) {
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}
	kind, what := args[0], args[1]

	fs := flag.NewFlagSet("fetch "+kind, flag.ExitOnError)
	out := fs.String("out", ".", "Download directory")
	setup(fs, args[2:])

	var path string
	var err error
	switch kind {
	case "pdb":
		path, err = fetch.FetchPDB(what, *out)
	case "sdf":
		path, err = fetch.FetchSDF(what, *out)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fatalf("fetch %s: %v", what, err)
	}
	fmt.Println(path)
}

func runClean(args []string) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	cfg := setup(fs, args)

	if err := tool.CleanTemp(cfg.TempDir); err != nil {
		fatalf("clean: %v", err)
	}
	fmt.Fprintf(os.Stderr, "cleaned %s\n", cfg.TempDir)
}
