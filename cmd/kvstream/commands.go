package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fystack/kvstream/pkg/infra"
	"github.com/fystack/kvstream/pkg/stream"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newCatCmd(a *app) *cobra.Command {
	var offset int64
	cmd := &cobra.Command{
		Use:   "cat <identifier>",
		Short: "Write a stored value to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.wrapper.Open(args[0], "r")
			if err != nil {
				return err
			}
			defer s.Close()

			if offset > 0 {
				if _, err := s.Seek(offset, io.SeekStart); err != nil {
					return err
				}
			}
			_, err = io.Copy(cmd.OutOrStdout(), s)
			return err
		},
	}
	cmd.Flags().Int64Var(&offset, "offset", 0, "start reading at this byte offset")
	return cmd
}

func newPutCmd(a *app) *cobra.Command {
	var (
		offset int64
		whence string
	)
	cmd := &cobra.Command{
		Use:   "put <identifier> [file]",
		Short: "Write stdin or a file into a stored value",
		Long: "Write stdin or a file into a stored value. Without --offset the data is\n" +
			"written at the start of the value, overwriting what is there and keeping\n" +
			"any longer tail.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = a.stdin
			if len(args) == 2 && args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}
			data, err := io.ReadAll(src)
			if err != nil {
				return err
			}

			s, err := a.wrapper.Open(args[0], "c+")
			if err != nil {
				return err
			}
			defer s.Close()

			if cmd.Flags().Changed("offset") || cmd.Flags().Changed("whence") {
				w, err := parseWhence(whence)
				if err != nil {
					return err
				}
				if _, err := s.Seek(offset, w); err != nil {
					return err
				}
			}
			// a single Write keeps the update to one store Set
			n, err := s.Write(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s at offset %d to %s\n",
				humanize.Bytes(uint64(n)), s.Tell()-int64(n), s.Name())
			return nil
		},
	}
	cmd.Flags().Int64Var(&offset, "offset", 0, "seek offset before writing")
	cmd.Flags().StringVar(&whence, "whence", "start", "seek origin: start, current or end")
	return cmd
}

func parseWhence(s string) (int, error) {
	switch strings.ToLower(s) {
	case "start", "set":
		return io.SeekStart, nil
	case "current", "cur":
		return io.SeekCurrent, nil
	case "end":
		return io.SeekEnd, nil
	default:
		return 0, fmt.Errorf("unknown whence %q", s)
	}
}

func newStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <identifier>",
		Short: "Describe a stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fi, err := a.wrapper.Stat(args[0])
			if err != nil {
				return err
			}
			printStat(cmd.OutOrStdout(), fi.Sys().(*stream.Metadata), fi.Mode().String())
			return nil
		},
	}
}

func printStat(out io.Writer, meta *stream.Metadata, mode string) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Scheme:\t%s\n", meta.Scheme)
	fmt.Fprintf(tw, "Key:\t%s\n", meta.Key)
	fmt.Fprintf(tw, "Size:\t%s (%d bytes)\n", humanize.Bytes(uint64(meta.Size)), meta.Size)
	fmt.Fprintf(tw, "Mode:\t%s (%o)\n", mode, meta.RawMode())
	if meta.Hits > 0 {
		fmt.Fprintf(tw, "Hits:\t%s\n", humanize.Comma(int64(meta.Hits)))
	}
	if !meta.ModifiedAt.IsZero() {
		fmt.Fprintf(tw, "Modified:\t%s\n", humanize.Time(meta.ModifiedAt))
	}
	if !meta.AccessedAt.IsZero() {
		fmt.Fprintf(tw, "Accessed:\t%s\n", humanize.Time(meta.AccessedAt))
	}
	tw.Flush()
}

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <scheme> [prefix]",
		Short: "List keys stored under a scheme",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.wrapper.Store(args[0])
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 2 {
				prefix = args[1]
			}
			pairs, err := store.List(prefix)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range pairs {
				fmt.Fprintf(tw, "%s\t%s\n", humanize.Bytes(uint64(len(p.Value))), p.Key)
			}
			return tw.Flush()
		},
	}
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <scheme>",
		Short: "Show store statistics for a scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.wrapper.Store(args[0])
			if err != nil {
				return err
			}
			inspector, ok := store.(infra.Inspector)
			if !ok {
				return fmt.Errorf("%s store does not report statistics", store.GetName())
			}
			info, err := inspector.Info()
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), args[0], info)
			return nil
		},
	}
}

func printInfo(out io.Writer, scheme string, info *infra.StoreInfo) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Scheme:\t%s (%s)\n", scheme, info.Name)
	if !info.StartTime.IsZero() {
		fmt.Fprintf(tw, "Started:\t%s\n", humanize.Time(info.StartTime))
	}
	fmt.Fprintf(tw, "Entries:\t%s\n", humanize.Comma(int64(len(info.Entries))))
	fmt.Fprintf(tw, "Total size:\t%s\n", humanize.Bytes(uint64(info.TotalSize())))
	fmt.Fprintf(tw, "Hits:\t%s\n", humanize.Comma(int64(info.Hits)))
	fmt.Fprintf(tw, "Misses:\t%s\n", humanize.Comma(int64(info.Misses)))
	fmt.Fprintf(tw, "Hit ratio:\t%s%%\n", hitRatio(info.Hits, info.Misses).StringFixed(2))
	tw.Flush()
}

// hitRatio is hits over lookups as a percentage, zero when nothing was looked up.
func hitRatio(hits, misses uint64) decimal.Decimal {
	total := hits + misses
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(hits)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 2)
}

func newRmCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "rm <identifier>",
		Short: "Delete a stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.wrapper.Resolve(args[0])
			if err != nil {
				return err
			}
			store, err := a.wrapper.Store(id.Scheme)
			if err != nil {
				return err
			}
			if !force {
				if _, err := store.Get(id.Key); err != nil {
					return fmt.Errorf("rm %s: %w", id, err)
				}
			}
			return store.Delete(id.Key)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "ignore missing keys")
	return cmd
}
