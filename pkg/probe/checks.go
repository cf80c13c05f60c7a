package probe

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// FileReadable checks that path names a readable regular file.
func FileReadable(path string) CheckFunc {
	return func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		return nil
	}
}

// DirWritable checks that a file can be created in the directory of path,
// creating the directory when needed.
func DirWritable(path string) CheckFunc {
	return func(ctx context.Context) error {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		f, err := os.CreateTemp(dir, ".probe-*")
		if err != nil {
			return err
		}
		name := f.Name()
		f.Close()
		return os.Remove(name)
	}
}

// PortAvailable checks that addr can be bound. The listener is closed again immediately.
func PortAvailable(addr string) CheckFunc {
	return func(ctx context.Context) error {
		var lc net.ListenConfig
		l, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		return l.Close()
	}
}
