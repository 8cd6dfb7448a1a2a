package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/noxworld-dev/gust"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "info <file.e>...",
		Short: "Show the header and footer of .e files",
		Args:  cobra.MinimumNArgs(1),
	}
	Root.AddCommand(cmd)
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
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			fr, err := codec.Inspect(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			out, err := json.MarshalIndent(struct {
				Path   string      `json:"path"`
				Size   int         `json:"size"`
				Digest string      `json:"xxhash"`
				Frame  *gust.Frame `json:"frame"`
			}{path, len(data), fmt.Sprintf("%016x", gust.Digest(data)), fr}, "", "\t")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		}
		return nil
	}
}
