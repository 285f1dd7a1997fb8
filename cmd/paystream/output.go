package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	jmespath "github.com/jmespath-community/go-jmespath"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

type outputOptions struct {
	Format string
	Query  string
}

func addOutputFlags(fs *flag.FlagSet, opts *outputOptions) {
	fs.StringVar(&opts.Format, "o", string(outputTable), "Output format: table, json or yaml")
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the json/yaml output")
}

// validate normalizes the options. A query without an explicit structured
// format renders as JSON.
func (o *outputOptions) validate() error {
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	o.Query = strings.TrimSpace(o.Query)

	switch outputFormat(o.Format) {
	case outputTable, outputJSON, outputYAML:
	default:
		return usagef("invalid output format %q (valid options: table, json, yaml)", o.Format)
	}
	if o.Query == "" {
		return nil
	}
	if _, err := jmespath.Compile(o.Query); err != nil {
		return usagef("invalid query %q: %v", o.Query, err)
	}
	if outputFormat(o.Format) == outputTable {
		o.Format = string(outputJSON)
	}
	return nil
}

// render writes v in the selected format. table is used for the table format.
func render(w io.Writer, opts outputOptions, v any, table func(tw *tabwriter.Writer) error) error {
	if outputFormat(opts.Format) == outputTable || opts.Format == "" {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		if err := table(tw); err != nil {
			return err
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("flush table: %w", err)
		}
		return nil
	}

	out := v
	if opts.Query != "" {
		generic, err := normalize(v)
		if err != nil {
			return err
		}
		out, err = jmespath.Search(opts.Query, generic)
		if err != nil {
			return usagef("evaluate query %q: %v", opts.Query, err)
		}
	}

	switch outputFormat(opts.Format) {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// normalize turns v into the map/slice/scalar shape JMESPath walks, keyed by
// the JSON field names.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	return out, nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
