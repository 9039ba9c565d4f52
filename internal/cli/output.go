package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// textRenderer is implemented by results with a human-readable form.
type textRenderer interface {
	renderText(w io.Writer) error
}

// printResult writes v in the runtime's output format.
func (rt *runtime) printResult(v textRenderer) error {
	switch rt.output {
	case "json":
		enc := json.NewEncoder(rt.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(rt.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return v.renderText(rt.out)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func header(w io.Writer, name string, stations int, exponent, threshold float64) {
	fmt.Fprintf(w, "network %s: %d stations, gamma=%g, beta=%g\n", name, stations, exponent, threshold)
}
