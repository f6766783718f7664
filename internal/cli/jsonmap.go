package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joacominatel/sqlmapper/internal/jsonmap"
	"github.com/spf13/cobra"
)

// JSONMapOptions holds options for the jsonmap command.
type JSONMapOptions struct {
	Template   string
	Builtin    string
	Attributes string
	List       bool
}

// NewJSONMapCommand creates the jsonmap command.
func NewJSONMapCommand() *cobra.Command {
	opts := &JSONMapOptions{}

	cmd := &cobra.Command{
		Use:   "jsonmap",
		Short: "Expand a JSON schema template with one property per attribute",
		Long: `Replace the "to_replace_attribute" placeholder object of a JSON schema
template with one string property per attribute name. Attribute names are read one
per line, from --attributes or stdin.`,
		Example: `  # Use the built-in data schema template
  sqlmapper generate -f query.sql --format json | jq -r .artifacts.attributes | sqlmapper jsonmap

  # Use a custom template
  sqlmapper jsonmap --template schema.json --attributes attrs.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJSONMap(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Template, "template", "t", "", "Template file")
	cmd.Flags().StringVarP(&opts.Builtin, "builtin", "b", "", "Built-in template name (default: dataSchema.json)")
	cmd.Flags().StringVarP(&opts.Attributes, "attributes", "a", "", "Attributes file, one name per line (default: stdin)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "List the built-in templates")

	return cmd
}

func runJSONMap(cmd *cobra.Command, opts *JSONMapOptions) error {
	out := cmd.OutOrStdout()

	if opts.List {
		for _, t := range jsonmap.Templates() {
			_, _ = fmt.Fprintln(out, t.Name)
		}
		return nil
	}

	if opts.Template != "" && opts.Builtin != "" {
		return errors.New("--template and --builtin are mutually exclusive")
	}

	var template string
	if opts.Template != "" {
		data, err := os.ReadFile(opts.Template)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		template = string(data)
	} else {
		name := opts.Builtin
		if name == "" {
			name = "dataSchema.json"
		}
		t, ok := jsonmap.TemplateByName(name)
		if !ok {
			return fmt.Errorf("unknown built-in template %q", name)
		}
		template = t.Value
	}

	attributes, err := readInput(cmd, opts.Attributes)
	if err != nil {
		return err
	}

	if !jsonmap.HasMarker(template) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: template has no %s placeholder\n", strings.TrimSuffix(jsonmap.Marker, ": {"))
	}

	r := jsonmap.Map(template, attributes)
	_, err = fmt.Fprintln(out, jsonmap.DataSchema(r))
	return err
}
