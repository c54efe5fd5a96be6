package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/partree/bpt"
	"github.com/katalvlaran/partree/grid"
	"github.com/katalvlaran/partree/prl"
)

type rootFlags struct {
	verbose bool
	conn    int
}

func (rf *rootFlags) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if rf.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (rf *rootFlags) forest(cmd *cobra.Command) (*bpt.Forest, error) {
	var conn grid.Connectivity
	switch rf.conn {
	case 4:
		conn = grid.Conn4
	case 8:
		conn = grid.Conn8
	default:
		return nil, fmt.Errorf("unknown connectivity %d (want 4 or 8)", rf.conn)
	}
	return bpt.New(
		bpt.WithConnectivity(conn),
		bpt.WithLogger(rf.logger(cmd.ErrOrStderr())),
	), nil
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:          "bpt",
		Short:        "Convert and inspect Binary Partition Tree files",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&rf.verbose, "verbose", "v", false, "log debug records to stderr")
	root.PersistentFlags().IntVar(&rf.conn, "conn", 4, "pixel connectivity (4|8)")
	root.AddCommand(
		newEncodeCmd(rf),
		newDecodeCmd(rf),
		newInfoCmd(),
		newReplayCmd(rf),
	)
	return root
}

func newEncodeCmd(rf *rootFlags) *cobra.Command {
	var partition, mergings, prlPath, index, image string
	var compress bool
	var numBits uint8
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Convert a raw partition/mergings pair into a PRL file and index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := rf.forest(cmd)
			if err != nil {
				return err
			}
			if err := f.LoadFromFiles(partition, mergings); err != nil {
				return err
			}
			if err := f.SavePRL(image, prlPath, index,
				prl.WithCompression(compress), prl.WithNumBits(numBits)); err != nil {
				return err
			}
			return printSize(cmd.OutOrStdout(), prlPath)
		},
	}
	cmd.Flags().StringVar(&partition, "partition", "", "raw leaves partition file")
	cmd.Flags().StringVar(&mergings, "mergings", "", "raw mergings file")
	cmd.Flags().StringVar(&prlPath, "prl", "", "output PRL file")
	cmd.Flags().StringVar(&index, "index", "", "output index file")
	cmd.Flags().StringVar(&image, "image", "", "image path recorded in the index")
	cmd.Flags().BoolVar(&compress, "zstd", false, "zstd-compress the PRL body")
	cmd.Flags().Uint8Var(&numBits, "num-bits", 0, "explicit label width (0 = derive)")
	for _, name := range []string{"partition", "mergings", "prl", "index"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newDecodeCmd(rf *rootFlags) *cobra.Command {
	var index, partition, mergings string
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Convert a PRL index and file back into a raw partition/mergings pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := rf.forest(cmd)
			if err != nil {
				return err
			}
			image, err := f.LoadPRL(index)
			if err != nil {
				return err
			}
			if err := f.SaveToFiles(partition, mergings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "image: %s\n", image)
			if err := printSize(cmd.OutOrStdout(), partition); err != nil {
				return err
			}
			return printSize(cmd.OutOrStdout(), mergings)
		},
	}
	cmd.Flags().StringVar(&index, "index", "", "input index file")
	cmd.Flags().StringVar(&partition, "partition", "", "output raw leaves partition file")
	cmd.Flags().StringVar(&mergings, "mergings", "", "output raw mergings file")
	for _, name := range []string{"index", "partition", "mergings"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.prl>",
		Short: "Print the header of a PRL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := prl.ReadFileHeader(args[0])
			if err != nil {
				return err
			}
			st, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "sizes:      %v\n", h.Sizes)
			fmt.Fprintf(w, "cells:      %s\n", humanize.Comma(int64(h.Len())))
			fmt.Fprintf(w, "num_bits:   %d\n", h.NumBits)
			fmt.Fprintf(w, "datatype:   %d\n", h.DataType)
			fmt.Fprintf(w, "compressed: %t\n", h.Compressed == prl.CompressionZstd)
			fmt.Fprintf(w, "file size:  %s\n", humanize.Bytes(uint64(st.Size())))
			fmt.Fprintf(w, "bits/cell:  %.3f\n", float64(8*st.Size())/float64(h.Len()))
			return nil
		},
	}
}

func newReplayCmd(rf *rootFlags) *cobra.Command {
	var partition, mergings string
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild a forest from a raw pair and print its shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := rf.forest(cmd)
			if err != nil {
				return err
			}
			if err := f.LoadFromFiles(partition, mergings); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "raster:  %v (%s pixels)\n", f.LeavesPartition(),
				humanize.Comma(int64(f.LeavesPartition().Len())))
			for _, filter := range []bpt.Filter{bpt.Leaves, bpt.NonLeaves, bpt.Roots} {
				fmt.Fprintf(w, "%-8s %s\n", filter.String()+":", humanize.Comma(int64(f.Count(filter))))
			}
			fmt.Fprintf(w, "merges:  %s\n", humanize.Comma(int64(f.MergeCount())))
			return nil
		},
	}
	cmd.Flags().StringVar(&partition, "partition", "", "raw leaves partition file")
	cmd.Flags().StringVar(&mergings, "mergings", "", "raw mergings file")
	for _, name := range []string{"partition", "mergings"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func printSize(w io.Writer, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s\n", path, humanize.Bytes(uint64(st.Size())))
	return nil
}
