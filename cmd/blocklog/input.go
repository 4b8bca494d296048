package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// input is an opened record source. Close releases the decompressor and the
// underlying file.
type input struct {
	io.Reader
	closers []func() error
}

func (in *input) Close() error {
	var first error
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openInput opens a record file, decompressing archived logs by extension
// (".zst", ".gz"). "-" is stdin, which is never decompressed.
func openInput(name string, stdin io.Reader) (*input, error) {
	if name == "-" {
		return &input{Reader: stdin}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	in := &input{Reader: f, closers: []func() error{f.Close}}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(f)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("failed to open zstd input: %w", err)
		}
		in.Reader = dec
		in.closers = append(in.closers, func() error { dec.Close(); return nil })
	case ".gz":
		dec, err := gzip.NewReader(f)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("failed to open gzip input: %w", err)
		}
		in.Reader = dec
		in.closers = append(in.closers, dec.Close)
	}
	return in, nil
}
