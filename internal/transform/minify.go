package transform

import (
	"bytes"
	"context"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
	"shanhu.io/misc/errcode"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
)

// Media types understood by Minify.
const (
	MediaCSS = "text/css"
	MediaJS  = "application/javascript"
	MediaSVG = "image/svg+xml"
)

var (
	minifierOnce sync.Once
	minifier     *minify.M
)

func sharedMinifier() *minify.M {
	minifierOnce.Do(func() {
		m := minify.New()
		m.AddFunc(MediaCSS, css.Minify)
		m.AddFunc(MediaJS, js.Minify)
		// viewBox and stroke/fill attributes are kept by the svg minifier.
		m.AddFunc(MediaSVG, svg.Minify)
		minifier = m
	})
	return minifier
}

// MinifyBytes minifies data of the given media type.
func MinifyBytes(mediaType string, data []byte) ([]byte, error) {
	out, err := sharedMinifier().Bytes(mediaType, data)
	if err != nil {
		return nil, errcode.Annotatef(err, "minify %s", mediaType)
	}
	return out, nil
}

// Minify returns a transform minifying content of mediaType.
func Minify(mediaType string) Func {
	return func(ctx context.Context, c *Content) error {
		out, err := MinifyBytes(mediaType, c.Data)
		if err != nil {
			return builderrors.NewTransformToolError("minify", c.source(), err)
		}
		c.Data = out
		return nil
	}
}

// concatScripts joins script sources with a newline so a missing trailing
// newline cannot merge two statements.
func concatScripts(parts [][]byte) []byte {
	var buf bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(p)
	}
	return buf.Bytes()
}
