package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/cypherdash/internal/config"
)

const (
	flagOutput = "output"

	// tabPadding is the column gap of tabwriter tables.
	tabPadding = 2

	yamlIndent = 2
)

// ErrUnsupportedFormat is returned for an --output value the command cannot render.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// resolveFormat picks the output format: the --output flag when set, else the
// configured default. A configured default the command does not support falls
// back to table; an explicit unsupported flag value is an error.
func resolveFormat(cmd *cobra.Command, flagValue string, supported []string) (string, error) {
	if cmd.Flags().Changed(flagOutput) {
		format := strings.ToLower(strings.TrimSpace(flagValue))
		if !slices.Contains(supported, format) {
			return "", fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedFormat, flagValue,
				strings.Join(supported, ", "))
		}
		return format, nil
	}

	format := config.GetDefaultOutputFormat()
	if !slices.Contains(supported, format) {
		return config.FormatTable, nil
	}
	return format, nil
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ndjsonWriter writes one compact JSON document per line.
type ndjsonWriter struct {
	enc *json.Encoder
}

func newNDJSONWriter(w io.Writer) *ndjsonWriter {
	return &ndjsonWriter{enc: json.NewEncoder(w)}
}

func (n *ndjsonWriter) Write(v any) error {
	return n.enc.Encode(v)
}

// writeYAML writes v as a YAML document.
func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(v); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// orDash renders empty values as "-".
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
