// Package transform implements the per-file steps of the build pipeline:
// verbatim copy, text substitution, renaming, minification, image
// compression, linting and external tool invocation.
package transform

import (
	"context"
	"io/fs"
)

// Content is one file travelling through a step.
type Content struct {
	// Src is the path the file was read from.
	Src string
	// Rel is the slash-separated output path below the step destination.
	Rel string
	// Data holds the current bytes.
	Data []byte
	// Mode holds the permission bits written with the output.
	Mode fs.FileMode
}

// source names the file in error reports.
func (c *Content) source() string {
	if c.Src != "" {
		return c.Src
	}
	return c.Rel
}

// Func transforms a file in place.
type Func func(ctx context.Context, c *Content) error

// Chain applies fns in order.
func Chain(fns ...Func) Func {
	return func(ctx context.Context, c *Content) error {
		for _, fn := range fns {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, c); err != nil {
				return err
			}
		}
		return nil
	}
}

// Copy leaves the content untouched.
func Copy() Func {
	return func(ctx context.Context, c *Content) error { return nil }
}
