package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats for --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Root().PersistentFlags().GetString("format")
	return format
}

// writeOutput renders v in the requested format. textFn is used for "text";
// when it is nil, text falls back to JSON.
func writeOutput(w io.Writer, v any, format string, textFn func() string) error {
	switch format {
	case formatText, "":
		if textFn != nil {
			_, err := fmt.Fprintln(w, textFn())
			return err
		}
		fallthrough
	case formatJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case formatYAML, "yml":
		// Round-trip through JSON so struct tags and decoded maps render the
		// same way.
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var tmp any
		if err := json.Unmarshal(b, &tmp); err != nil {
			return err
		}
		out, err := yaml.Marshal(tmp)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown output format %q (valid: text, json, yaml)", format)
	}
}
