package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-dotthz/internal/hdf5"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Dump the raw HDF5 tree of a file",
		Long: `Print every group and dataset of an HDF5 file with its attributes,
whether or not the file follows the dotTHz layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd.OutOrStdout(), args[0])
		},
	}
}

func inspect(w io.Writer, path string) error {
	f, err := hdf5.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintf(w, "%s (superblock v%d)\n", path, f.Version())

	attrs := make(map[string][]hdf5.AttrInfo)
	err = f.WalkAttrs(func(info hdf5.AttrInfo) error {
		attrs[info.ObjectPath] = append(attrs[info.ObjectPath], info)
		return nil
	})
	if err != nil {
		return err
	}

	return hdf5.Walk(f.Root(), func(p string, obj interface{}, err error) error {
		depth := strings.Count(strings.Trim(p, "/"), "/")
		if p != "/" {
			depth++
		}
		indent := strings.Repeat("  ", depth)
		if err != nil {
			fmt.Fprintf(w, "%s%s  error: %v\n", indent, p, err)
			return nil
		}

		switch o := obj.(type) {
		case *hdf5.Group:
			fmt.Fprintf(w, "%sgroup %s\n", indent, p)
		case *hdf5.Dataset:
			fmt.Fprintf(w, "%sdataset %s  %s %v\n", indent, p, o.Datatype(), o.Shape())
		}
		for _, info := range attrs[p] {
			if info.Err != nil {
				fmt.Fprintf(w, "%s  @%s  error: %v\n", indent, info.Name, info.Err)
				continue
			}
			switch v := info.Value.(type) {
			case string, []string:
				fmt.Fprintf(w, "%s  @%s = %q\n", indent, info.Name, v)
			default:
				fmt.Fprintf(w, "%s  @%s = %v\n", indent, info.Name, v)
			}
		}
		return nil
	})
}
