package main

import (
	"fmt"
	"log/slog"

	"github.com/noxworld-dev/gust"
	"github.com/spf13/cobra"
)

func init() {
	addBatchCommand(gust.OpDecode, "decode <file.e>...", "Unscramble and decompress .e files to .xml")
	addBatchCommand(gust.OpEncode, "encode <file.xml>...", "Compress and scramble files into .e files")
}

func addBatchCommand(op gust.Op, use, short string) {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
	}
	Root.AddCommand(cmd)
	fJobs := cmd.Flags().IntP("jobs", "j", 0, "files processed in parallel (0: one per CPU)")
	fCache := cmd.Flags().Int("cache", 64, "identical inputs remembered per run (0: off)")
	fBackup := cmd.Flags().Bool("backup", true, "rename existing outputs to .bak")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		paths, err := expandPaths(args)
		if err != nil {
			return err
		}
		codec, err := newCodec()
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		b := &gust.Batch{
			Codec:  codec,
			Jobs:   *fJobs,
			Backup: *fBackup,
		}
		if *fCache > 0 {
			b.Cache = gust.NewCache(*fCache)
		}
		list, err := b.Run(cmd.Context(), op, paths)
		if err != nil {
			return err
		}
		failed := 0
		for _, r := range list {
			if r.Err != nil {
				failed++
				slog.Warn(op.String()+"Failed", "path", r.Src, "err", r.Err)
				continue
			}
			fmt.Printf("%08x %s\n", r.Size, r.Dst)
		}
		if failed != 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(list))
		}
		return nil
	}
}
