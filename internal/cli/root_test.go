package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateText(t *testing.T) {
	out, err := run(t, "generate", "--stations", "5", "--exponent", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "network U5: 5 stations, gamma=3, beta=1")
	assert.Contains(t, out, "E[3] = [(1, 2, 3), (1, 2, 5), (1, 4, 5), (2, 3, 4), (3, 4, 5)]")
	assert.Contains(t, out, "edges: 5")
}

func TestGenerateJSON(t *testing.T) {
	out, err := run(t, "generate", "-n", "3", "-g", "1.2", "-o", "json")
	require.NoError(t, err)

	var res generateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.Stations)
	assert.Equal(t, 1, res.Edges)
	require.Len(t, res.Levels, 1)
	assert.Equal(t, 3, res.Levels[0].Size)
	assert.Equal(t, [][]int{{1, 2, 3}}, res.Levels[0].Edges)
}

func TestGenerateSingleStationHasNoEdges(t *testing.T) {
	out, err := run(t, "generate", "-n", "1", "-o", "json")
	require.NoError(t, err)
	var res generateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 0, res.Edges)
	assert.Empty(t, res.Levels)
}

func TestDegreeCentredPentagonYAML(t *testing.T) {
	out, err := run(t, "degree", "-n", "5", "--centre", "-g", "3", "-o", "yaml")
	require.NoError(t, err)

	var res degreeResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Equal(t, 6, res.Stations)
	assert.Equal(t, 10, res.Edges)
	assert.InDelta(t, 3.0, res.Sigma, 1e-9)
	require.Len(t, res.Vertices, 6)
	assert.InDelta(t, 3.0, res.Vertices[0].DeltaPrime, 1e-9)
	assert.InDelta(t, 0.0, res.Vertices[0].DeltaDoublePrime, 1e-9)
	assert.Equal(t, 1, res.WorstReceiver, "the centre hears all five pentagon stations")
	assert.InDelta(t, 5.0, res.WorstEnergy, 1e-9)
}

func TestDegreeText(t *testing.T) {
	out, err := run(t, "degree", "-n", "3", "-g", "1.2")
	require.NoError(t, err)
	assert.Contains(t, out, "sigma: 1.5000")
	assert.Contains(t, out, "worst receiver: ")
	assert.Contains(t, out, "delta''")
}

func TestSearchFourStations(t *testing.T) {
	out, err := run(t, "search", "-n", "4", "-o", "json")
	require.NoError(t, err)

	var res searchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 2.544, res.Exponent, 0.01)
	assert.Equal(t, 13, res.Iterations)
	assert.Less(t, res.Low, res.High)
}

func TestSearchRejectsInvertedBracket(t *testing.T) {
	_, err := run(t, "search", "-n", "3", "--low", "5", "--high", "2")
	require.Error(t, err)
}

func TestSweepScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: iss-and-ground
exponent: 2
stations:
  - {name: ground-a, x: 0, y: 0}
  - {name: ground-b, x: 20, y: 0}
  - name: iss
    tle:
      - "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
      - "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
`), 0o600))

	out, err := run(t, "sweep", "--scenario", path,
		"--start", "2021-10-02T14:00:00Z", "--tick", "10m", "--duration", "30m", "-o", "json")
	require.NoError(t, err)

	var res sweepResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "iss-and-ground", res.Network)
	assert.Equal(t, 3, res.Stations)
	assert.Equal(t, 1, res.Orbital)
	assert.Len(t, res.Samples, 4)
}

func TestConfigFileFeedsCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
network:
  exponent: 1.2
stations:
  count: 3
`), 0o600))

	out, err := run(t, "--config", path, "generate", "-o", "json")
	require.NoError(t, err)
	var res generateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1.2, res.Exponent)
	assert.Equal(t, 1, res.Edges)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "generate", "-o", "xml")
	assert.ErrorIs(t, err, ErrUnknownOutput)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "chatty", "version")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hypergraph dev")
}

func TestRuntimeReleasedWhenCommandFails(t *testing.T) {
	root := NewRootCommand()
	var seen *runtime
	root.AddCommand(withCleanup(&cobra.Command{
		Use: "fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			seen = rt
			return errors.New("boom")
		},
	}))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"fail"})

	require.EqualError(t, root.Execute(), "boom")
	require.NotNil(t, seen)
	assert.True(t, seen.closed)
}

func TestRuntimeReleasedAfterSuccess(t *testing.T) {
	root := NewRootCommand()
	var seen *runtime
	root.AddCommand(withCleanup(&cobra.Command{
		Use: "ok",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			seen, err = runtimeFrom(cmd)
			return err
		},
	}))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"ok"})

	require.NoError(t, root.Execute())
	require.NotNil(t, seen)
	assert.True(t, seen.closed)
	seen.close()
}
