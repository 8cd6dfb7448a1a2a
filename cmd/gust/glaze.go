package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/noxworld-dev/gust"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "glaze <in> <out>",
		Short: "Wrap a raw file into a Glaze stream",
		Args:  cobra.ExactArgs(2),
	}
	Root.AddCommand(cmd)
	fGlazeVers := cmd.Flags().Int("version", 0, "byte order of the stream: 2 (big-endian) or 3 (little-endian); default from --game")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rawGlaze(cmd, args, *fGlazeVers, gust.Glaze)
	}

	cmd = &cobra.Command{
		Use:   "unglaze <in> <out>",
		Short: "Decompress a raw Glaze stream",
		Args:  cobra.ExactArgs(2),
	}
	Root.AddCommand(cmd)
	fUnglazeVers := cmd.Flags().Int("version", 0, "byte order of the stream: 2 (big-endian) or 3 (little-endian); default from --game")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rawGlaze(cmd, args, *fUnglazeVers, gust.Unglaze)
	}
}

func rawGlaze(cmd *cobra.Command, args []string, vers int, fn func([]byte, binary.ByteOrder) ([]byte, error)) error {
	v := gust.Version(vers)
	if vers == 0 {
		codec, err := newCodec()
		if err != nil {
			return err
		}
		v = codec.Seeds().Version
	}
	if v.Unknown() {
		return fmt.Errorf("unsupported version: %d", vers)
	}
	cmd.SilenceUsage = true
	in, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	out, err := fn(in, v.ByteOrder())
	if err != nil {
		return err
	}
	if err := gust.WriteFile(args[1], out, false); err != nil {
		return err
	}
	fmt.Printf("%08x %s\n", len(out), args[1])
	return nil
}
