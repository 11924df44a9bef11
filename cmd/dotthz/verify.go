package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-dotthz/dotthz"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify PATTERN...",
		Short: "Check that files survive a save/load round trip",
		Long: `Load each matching file, save it to a temporary file, load that again
and compare both. Fails if any file differs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expand(args)
			if err != nil {
				return err
			}
			tmp, err := os.MkdirTemp("", "dotthz-verify-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(tmp)

			failed := 0
			for i, path := range paths {
				copyPath := filepath.Join(tmp, fmt.Sprintf("%d.thz", i))
				if err := roundTrip(path, copyPath); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed verification", failed, len(paths))
			}
			return nil
		},
	}
}

func roundTrip(path, copyPath string) error {
	orig, err := dotthz.Load(path)
	if err != nil {
		return err
	}
	if err := orig.Save(copyPath); err != nil {
		return err
	}
	again, err := dotthz.Load(copyPath)
	if err != nil {
		return err
	}
	if !orig.Equal(again) {
		return fmt.Errorf("content differs after round trip")
	}
	return nil
}
