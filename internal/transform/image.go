package transform

import (
	"bytes"
	"context"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"shanhu.io/misc/errcode"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/logger"
)

// JPEGQuality is used when re-encoding JPEG images natively.
const JPEGQuality = 90

// ImageOptions configures CompressImage.
type ImageOptions struct {
	// External, when set, replaces the native encoders. The image is sent on
	// stdin and stdout is taken as the compressed image.
	External *Tool
}

// CompressImage returns a transform that recompresses PNG, JPEG, GIF and
// SVG files. The original bytes are kept unless the result is smaller.
// Files of other types pass through.
func CompressImage(opts ImageOptions) Func {
	return func(ctx context.Context, c *Content) error {
		var (
			out []byte
			err error
		)
		if opts.External != nil {
			var res *ToolOutput
			res, err = opts.External.Run(ctx, c.Data)
			if err != nil {
				if be, ok := builderrors.AsBuildError(err); ok {
					return be.WithContext("source", c.source())
				}
				return err
			}
			out = res.Stdout
		} else {
			out, err = encodeImage(strings.ToLower(path.Ext(c.Rel)), c.Data)
			if err != nil {
				return builderrors.NewTransformToolError("image", c.source(), err)
			}
		}

		if len(out) == 0 || len(out) >= len(c.Data) {
			return nil
		}
		logger.Op.WithFields(map[string]interface{}{
			"file":   c.Rel,
			"before": len(c.Data),
			"after":  len(out),
		}).Debug("Image compressed")
		c.Data = out
		return nil
	}
}

func encodeImage(ext string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch ext {
	case ".png":
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errcode.Annotate(err, "decode png")
		}
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, errcode.Annotate(err, "encode png")
		}
	case ".jpg", ".jpeg":
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errcode.Annotate(err, "decode jpeg")
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, errcode.Annotate(err, "encode jpeg")
		}
	case ".gif":
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, errcode.Annotate(err, "decode gif")
		}
		if err := gif.EncodeAll(&buf, g); err != nil {
			return nil, errcode.Annotate(err, "encode gif")
		}
	case ".svg":
		return MinifyBytes(MediaSVG, data)
	default:
		return nil, nil
	}
	return buf.Bytes(), nil
}
