package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/noxworld-dev/gust"
	"github.com/spf13/cobra"
)

var (
	Root = &cobra.Command{
		Use:   "gust",
		Short: "Gust .e file tools",
	}
	fRootSeeds = Root.PersistentFlags().String("seeds", "", "seed table JSON (default: built-in table)")
	fRootGame  = Root.PersistentFlags().StringP("game", "g", "A17", "title id in the seed table")
	fRootDebug = Root.PersistentFlags().Bool("debug", false, "trace codec steps to stderr")
)

func init() {
	Root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *fRootDebug {
			gust.DebugLog = log.New(os.Stderr, "", 0)
		}
	}
}

func loadSeeds() (*gust.SeedTable, error) {
	if *fRootSeeds == "" {
		return gust.DefaultSeeds(), nil
	}
	f, err := os.Open(*fRootSeeds)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return gust.LoadSeeds(f)
}

func newCodec() (*gust.Codec, error) {
	t, err := loadSeeds()
	if err != nil {
		return nil, err
	}
	s, err := t.Lookup(*fRootGame)
	if err != nil {
		return nil, err
	}
	return gust.NewCodec(s)
}

// expandPaths resolves ** glob patterns; plain names are kept as given.
func expandPaths(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if !doublestar.ValidatePathPattern(arg) {
			return nil, fmt.Errorf("invalid pattern: %q", arg)
		}
		list, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		out = append(out, list...)
	}
	return out, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := Root.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
