package fetch

import (
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/tikz/dockmate/tool"
)

const timeout = 120 * time.Second

func (c *Client) get(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	tool.Logger.Printf("fetch: GET %s", url)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", url)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(tool.ErrNotFound, "GET %s: HTTP status code %d", url, res.StatusCode)
	case res.StatusCode != http.StatusOK:
		return nil, errors.Errorf("GET %s: HTTP status code %d", url, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", url)
	}
	return body, nil
}
