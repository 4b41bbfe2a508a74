// Package fetch downloads structures from RCSB PDB and PubChem.
// A file already present in the target directory is reused without a request.
package fetch

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/tikz/dockmate/pdb"
	"github.com/tikz/dockmate/tool"
)

const (
	// RCSBURL is the RCSB PDB file download endpoint.
	RCSBURL = "https://files.rcsb.org/download"
	// PubChemURL is the base of the PubChem PUG REST API.
	PubChemURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
)

var pdbIDRe = regexp.MustCompile(`^[0-9][A-Za-z0-9]{3}$`)

// Client holds the base URLs, which tests point at a local server.
type Client struct {
	HTTP    *http.Client
	RCSB    string
	PubChem string
}

// NewClient returns a client for the public services.
func NewClient() *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		RCSB:    RCSBURL,
		PubChem: PubChemURL,
	}
}

// FetchPDB downloads the PDB entry id into dir with the default client.
func FetchPDB(id, dir string) (string, error) { return NewClient().PDB(id, dir) }

// FetchSDF downloads a 3D SDF for the compound name into dir with the default client.
func FetchSDF(name, dir string) (string, error) { return NewClient().SDF(name, dir) }

// PDB writes dir/<ID>.pdb and returns its path. The body must hold atom records.
func (c *Client) PDB(id, dir string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if !pdbIDRe.MatchString(id) {
		return "", errors.Wrapf(tool.ErrInvalidInput, "PDB ID %q", id)
	}

	path := filepath.Join(dir, id+".pdb")
	if tool.IsFile(path) {
		tool.Logger.Printf("fetch: %s already downloaded", path)
		return filepath.Abs(path)
	}

	raw, err := c.get(c.RCSB + "/" + id + ".pdb")
	if err != nil {
		return "", errors.Wrapf(err, "PDB %s", id)
	}
	if _, err := pdb.NewStructureFromRaw(raw); err != nil {
		return "", errors.Wrapf(tool.ErrParse, "PDB %s: %v", id, err)
	}

	return write(path, raw)
}

// SDF writes dir/<name>.sdf and returns its path.
func (c *Client) SDF(name, dir string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.Wrap(tool.ErrInvalidInput, "empty compound name")
	}

	file := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	path := filepath.Join(dir, filepath.Base(file)+".sdf")
	if tool.IsFile(path) {
		tool.Logger.Printf("fetch: %s already downloaded", path)
		return filepath.Abs(path)
	}

	u := c.PubChem + "/compound/name/" + url.PathEscape(name) + "/SDF?record_type=3d"
	raw, err := c.get(u)
	if err != nil {
		return "", errors.Wrapf(err, "compound %q", name)
	}
	if !strings.Contains(string(raw), "$$$$") {
		return "", errors.Wrapf(tool.ErrParse, "compound %q: response is not an SDF record", name)
	}

	return write(path, raw)
}

func write(path string, raw []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", errors.WithStack(err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return filepath.Abs(path)
}
