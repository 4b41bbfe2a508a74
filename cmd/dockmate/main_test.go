package main

import (
	"errors"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tikz/dockmate/pipeline"
	"github.com/tikz/dockmate/tool"
)

func TestParseTriple(t *testing.T) {
	v, err := parseTriple(" 1.5, -2,3 ")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2, 3}, v)

	v, err = parseTriple("")
	require.NoError(t, err)
	assert.Nil(t, v)

	for _, bad := range []string{"1,2", "1,2,3,4", "1,x,3"} {
		_, err := parseTriple(bad)
		assert.True(t, errors.Is(err, tool.ErrInvalidInput), bad)
	}
}

func TestVinaFlagsSeed(t *testing.T) {
	fs := flag.NewFlagSet("dock", flag.ContinueOnError)
	opts := vinaFlags(fs)
	require.NoError(t, fs.Parse([]string{"-exhaustiveness", "32"}))
	o := opts()
	assert.Equal(t, 32, o.Exhaustiveness)
	assert.Nil(t, o.Seed)

	fs = flag.NewFlagSet("dock", flag.ContinueOnError)
	opts = vinaFlags(fs)
	require.NoError(t, fs.Parse([]string{"-seed", "0"}))
	o = opts()
	require.NotNil(t, o.Seed)
	assert.Equal(t, int64(0), *o.Seed)
}

func TestBoxFlags(t *testing.T) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	req := pipeline.NewRequest("", "", "")
	apply := boxFlags(fs, &req)
	require.NoError(t, fs.Parse([]string{"-center", "1,2,3", "-pocket", "3", "-padding", "6"}))
	apply()

	assert.Equal(t, []float64{1, 2, 3}, req.Center)
	assert.Nil(t, req.Size)
	assert.Equal(t, 3, req.PocketRank)
	assert.Equal(t, 6.0, req.Padding)
	assert.Equal(t, 9, req.VinaOptions.NumModes)
}
