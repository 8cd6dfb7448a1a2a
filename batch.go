package gust

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	OpDecode = Op(iota)
	OpEncode
)

// Op is a file level codec operation.
type Op int

func (op Op) String() string {
	switch op {
	case OpDecode:
		return "decode"
	case OpEncode:
		return "encode"
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// OutputName returns the file an operation writes for src.
// Decoding appends .xml, so foo.e decodes to foo.e.xml. Encoding drops
// that .xml again and makes sure the name ends in .e.
func (op Op) OutputName(src string) string {
	if op != OpEncode {
		return src + ".xml"
	}
	if ext := filepath.Ext(src); strings.EqualFold(ext, ".xml") {
		src = strings.TrimSuffix(src, ext)
	}
	if !strings.EqualFold(filepath.Ext(src), ".e") {
		src += ".e"
	}
	return src
}

// WriteFile atomically replaces path with data. With backup, an existing
// file is first renamed to path.bak.
func WriteFile(path string, data []byte, backup bool) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, 0644)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if backup {
		if _, err := os.Stat(path); err == nil {
			if err := os.Rename(path, path+".bak"); err != nil {
				_ = os.Remove(tmp)
				return err
			}
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Result is the outcome of one file of a batch.
type Result struct {
	Src  string
	Dst  string
	Size int
	Err  error
}

// Batch runs a codec operation over many files. Files are independent:
// each runs its whole pipeline on one worker and a failure only affects
// its own Result.
type Batch struct {
	Codec *Codec
	// Jobs limits the files processed at once; 0 means GOMAXPROCS.
	Jobs   int
	Cache  *Cache
	Backup bool
}

func (b *Batch) one(ctx context.Context, op Op, src string) Result {
	res := Result{Src: src, Dst: op.OutputName(src)}
	in, err := os.ReadFile(src)
	if err != nil {
		res.Err = err
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	fn := b.Codec.Decode
	if op == OpEncode {
		fn = b.Codec.Encode
	}
	out, err := b.Cache.Do(op, b.Codec.Seeds().ID, in, fn)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", src, err)
		return res
	}
	if err := WriteFile(res.Dst, out, b.Backup); err != nil {
		res.Err = err
		return res
	}
	res.Size = len(out)
	return res
}

// Run processes paths and returns one Result per path, in order.
// The error is only set when ctx is cancelled.
func (b *Batch) Run(ctx context.Context, op Op, paths []string) ([]Result, error) {
	jobs := b.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	out := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		if err := gctx.Err(); err != nil {
			out[i] = Result{Src: path, Err: err}
			continue
		}
		g.Go(func() error {
			out[i] = b.one(gctx, op, path)
			if DebugLog != nil {
				DebugLog.Printf("batch: %s %s: %v", op, path, out[i].Err)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}
