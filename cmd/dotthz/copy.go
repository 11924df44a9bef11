package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-dotthz/dotthz"
)

func newCopyCmd() *cobra.Command {
	var (
		atomic    bool
		noClobber bool
	)

	cmd := &cobra.Command{
		Use:   "copy SRC DST",
		Short: "Load a file and save it again",
		Long: `Load SRC and write its measurements to DST, normalizing the layout to
the one this tool writes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dotthz.Load(args[0])
			if err != nil {
				return err
			}
			opts := []dotthz.Option{dotthz.WithOverwrite(!noClobber)}
			if atomic {
				opts = append(opts, dotthz.WithAtomicWrite())
			}
			if err := c.Save(args[1], opts...); err != nil {
				return err
			}
			slog.Debug("copied", "src", args[0], "dst", args[1], "measurements", c.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&atomic, "atomic", false, "Write to a temporary file and rename it into place")
	cmd.Flags().BoolVarP(&noClobber, "no-clobber", "n", false, "Fail instead of overwriting DST")
	return cmd
}
