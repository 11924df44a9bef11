package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-dotthz/dotthz"
)

func newMetaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Export or import measurement metadata as YAML",
	}
	cmd.AddCommand(newMetaExportCmd(), newMetaImportCmd())
	return cmd
}

func newMetaExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE [GROUP]",
		Short: "Print metadata as YAML",
		Long: `Print the metadata of every measurement as a YAML mapping keyed by
group name, or only the metadata of GROUP.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dotthz.Load(args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()

			if len(args) == 2 {
				m, ok := c.Measurement(args[1])
				if !ok {
					return fmt.Errorf("%s: no measurement %q", args[0], args[1])
				}
				return enc.Encode(m.MetaData)
			}

			doc := &yaml.Node{Kind: yaml.MappingNode}
			for p := c.Groups.Oldest(); p != nil; p = p.Next() {
				var value yaml.Node
				if err := value.Encode(p.Value.MetaData); err != nil {
					return err
				}
				key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key}
				doc.Content = append(doc.Content, key, &value)
			}
			return enc.Encode(doc)
		},
	}
}

func newMetaImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE YAML",
		Short: "Replace metadata from a YAML document",
		Long: `Read a YAML mapping of group name to metadata (the format written by
"meta export") and replace the metadata of those measurements. Use - to read
from standard input. The file is rewritten atomically.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return importMeta(args[0], r)
		},
	}
}

func importMeta(path string, r io.Reader) error {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("reading metadata: expected a mapping of group name to metadata")
	}

	c, err := dotthz.Load(path)
	if err != nil {
		return err
	}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		m, ok := c.Measurement(name)
		if !ok {
			return fmt.Errorf("%s: no measurement %q", path, name)
		}
		var md dotthz.MetaData
		if err := root.Content[i+1].Decode(&md); err != nil {
			return fmt.Errorf("metadata for %q: %w", name, err)
		}
		m.MetaData = md
	}
	return c.Save(path, dotthz.WithAtomicWrite())
}
