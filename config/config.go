// Package config resolves the locations of the external tools and the temp directory.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds executable paths and the working directory layout.
type Config struct {
	Home    string // install directory the default tool paths are relative to
	TempDir string // intermediate and default output artifacts

	Vina            string
	P2Rank          string
	OpenBabel       string
	PDBFixer        string
	MGLPython       string
	PrepareReceptor string
	PrepareLigand   string

	Verbose bool
}

const utilities24 = "bin/mgltools/MGLToolsPckgs/AutoDockTools/Utilities24"

// New returns the default layout under home without consulting the environment.
func New(home string) *Config {
	return &Config{
		Home:            home,
		TempDir:         filepath.Join(home, "temp"),
		Vina:            filepath.Join(home, "bin", "vina", "vina"),
		P2Rank:          filepath.Join(home, "bin", "p2rank", "prank"),
		OpenBabel:       filepath.Join(home, "bin", "openbabel", "obabel"),
		PDBFixer:        "pdbfixer",
		MGLPython:       filepath.Join(home, "bin", "mgltools", "bin", "pythonsh"),
		PrepareReceptor: filepath.Join(home, utilities24, "prepare_receptor4.py"),
		PrepareLigand:   filepath.Join(home, utilities24, "prepare_ligand4.py"),
	}
}

// Load reads an optional .env file and overrides the defaults with environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	home := strings.TrimSpace(os.Getenv("DOCKMATE_HOME"))
	if home == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, errors.Wrap(err, "locate executable")
		}
		home = filepath.Dir(exe)
	}
	home, err := filepath.Abs(home)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := New(home)
	cfg.TempDir = firstNonEmpty(os.Getenv("DOCKMATE_TEMP"), cfg.TempDir)
	cfg.Vina = firstNonEmpty(os.Getenv("VINA_PATH"), cfg.Vina)
	cfg.P2Rank = firstNonEmpty(os.Getenv("P2RANK_PATH"), cfg.P2Rank)
	cfg.OpenBabel = firstNonEmpty(os.Getenv("OBABEL_PATH"), cfg.OpenBabel)
	cfg.PDBFixer = firstNonEmpty(os.Getenv("PDBFIXER_PATH"), cfg.PDBFixer)
	cfg.MGLPython = firstNonEmpty(os.Getenv("MGL_PYTHON"), cfg.MGLPython)
	cfg.PrepareReceptor = firstNonEmpty(os.Getenv("PREPARE_RECEPTOR_SCRIPT"), cfg.PrepareReceptor)
	cfg.PrepareLigand = firstNonEmpty(os.Getenv("PREPARE_LIGAND_SCRIPT"), cfg.PrepareLigand)

	if raw := strings.TrimSpace(os.Getenv("DOCKMATE_VERBOSE")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "DOCKMATE_VERBOSE=%q", raw)
		}
		cfg.Verbose = v
	}

	return cfg, nil
}

// Dir returns a subdirectory of the temp directory, creating it if needed.
func (c *Config) Dir(parts ...string) (string, error) {
	dir := filepath.Join(append([]string{c.TempDir}, parts...)...)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	return dir, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
