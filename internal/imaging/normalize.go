package imaging

import (
	"bytes"
	"image"
	"image/png"
	"math"

	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"fitroom/internal/domain"
)

// The generation service reliably accepts PNG only, so every asset is
// re-encoded to PNG and kept within the bounding box below.
const (
	MaxWidth  = 1920
	MaxHeight = 1080
)

// Normalize converts arbitrary image bytes into the canonical transmission
// form: PNG, fitting within MaxWidth x MaxHeight, aspect ratio preserved,
// never upscaled. An image that is already canonical is returned with its
// bytes untouched. Undecodable input reports a decode failure.
func Normalize(asset domain.ImageAsset) (domain.ImageAsset, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(asset.Data))
	if err != nil {
		return domain.ImageAsset{}, domain.Wrap(domain.KindDecode, "unreadable image data", err)
	}

	if format == "png" && cfg.Width <= MaxWidth && cfg.Height <= MaxHeight {
		return domain.ImageAsset{
			Data:     asset.Data,
			MimeType: "image/png",
			Width:    cfg.Width,
			Height:   cfg.Height,
		}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(asset.Data))
	if err != nil {
		return domain.ImageAsset{}, domain.Wrap(domain.KindDecode, "unreadable image data", err)
	}

	width, height := fitWithin(cfg.Width, cfg.Height, MaxWidth, MaxHeight)
	out := src
	if width != cfg.Width || height != cfg.Height {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return domain.ImageAsset{}, domain.Wrap(domain.KindDecode, "encode png", err)
	}

	return domain.ImageAsset{
		Data:     buf.Bytes(),
		MimeType: "image/png",
		Width:    width,
		Height:   height,
	}, nil
}

// fitWithin scales (w, h) down so both dimensions fit the box, preserving
// aspect ratio. Images already inside the box keep their size.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
