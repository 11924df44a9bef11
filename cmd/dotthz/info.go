package main

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"

	"github.com/robert-malhotra/go-dotthz/dotthz"
)

func newInfoCmd() *cobra.Command {
	var digest bool

	cmd := &cobra.Command{
		Use:   "info PATTERN...",
		Short: "Summarize measurements, metadata and datasets",
		Long: `Print every measurement of the matching files with its metadata and
datasets. Patterns support ** globbing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expand(args)
			if err != nil {
				return err
			}
			for _, path := range paths {
				if err := printInfo(cmd.OutOrStdout(), path, digest); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&digest, "digest", false, "Print a BLAKE3 digest of each dataset")
	return cmd
}

func printInfo(w io.Writer, path string, digest bool) error {
	c, err := dotthz.Load(path)
	if err != nil {
		return err
	}
	st, err := os.Stat(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s  %s, %d measurement(s)\n", path, humanize.Bytes(uint64(st.Size())), c.Len())
	for p := c.Groups.Oldest(); p != nil; p = p.Next() {
		m := p.Value
		fmt.Fprintf(w, "  %s\n", p.Key)
		for _, key := range dotthz.FieldKeys {
			if v, _ := m.MetaData.Get(key); v != "" {
				fmt.Fprintf(w, "    %-12s %s\n", key+":", v)
			}
		}
		if m.MetaData.MDLen() > 0 {
			fmt.Fprintf(w, "    md:\n")
			for q := m.MetaData.MD.Oldest(); q != nil; q = q.Next() {
				fmt.Fprintf(w, "      %s: %s\n", q.Key, q.Value)
			}
		}
		if m.NumDatasets() == 0 {
			continue
		}
		for q := m.Datasets.Oldest(); q != nil; q = q.Next() {
			ds := q.Value
			size := uint64(ds.Len() * ds.DType().Size())
			fmt.Fprintf(w, "    %-16s %-8s %-12v %s", q.Key, ds.DType(), ds.Shape, humanize.Bytes(size))
			if digest {
				sum, err := datasetDigest(ds)
				if err != nil {
					return fmt.Errorf("%s: %s/%s: %w", path, p.Key, q.Key, err)
				}
				fmt.Fprintf(w, "  blake3:%s", sum)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

// datasetDigest hashes the little-endian element bytes of ds, so equal
// datasets hash equally regardless of how they were stored.
func datasetDigest(ds dotthz.Dataset) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s%v\x00", ds.DType(), ds.Shape)
	if err := binary.Write(&buf, binary.LittleEndian, ds.Data); err != nil {
		return "", err
	}
	sum := blake3.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
