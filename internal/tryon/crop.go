package tryon

import (
	"context"

	"github.com/rs/zerolog"

	"fitroom/internal/domain"
	"fitroom/internal/providers/genai"
)

// Cropper asks the generation service to isolate the garment photo inside a
// full-page screenshot, discarding navigation, buttons and text. It is a
// best-effort stage: whatever goes wrong, the caller gets a usable asset
// back. The size-threshold trigger lives with the caller, not here.
type Cropper struct {
	gen    ContentGenerator
	logger zerolog.Logger
}

// NewCropper wires the cropper to the generation service.
func NewCropper(gen ContentGenerator, logger zerolog.Logger) *Cropper {
	return &Cropper{gen: gen, logger: logger}
}

// Crop returns the cropped garment image, or the input unchanged when the
// service fails or answers without an image.
func (c *Cropper) Crop(ctx context.Context, screenshot domain.ImageAsset) domain.ImageAsset {
	mime := screenshot.MimeType
	if mime == "" {
		mime = "image/png"
	}

	res, err := c.gen.GenerateContent(ctx, []genai.Part{
		genai.ImagePart(screenshot.Data, mime),
		genai.TextPart(cropPrompt),
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("tryon: screenshot crop failed, using original")
		return screenshot
	}
	if !res.HasImage() {
		c.logger.Warn().Msg("tryon: crop returned no image, using original")
		return screenshot
	}

	c.logger.Debug().
		Int("before_bytes", screenshot.Size()).
		Int("after_bytes", len(res.ImageData)).
		Msg("tryon: cropped garment out of screenshot")

	return domain.ImageAsset{Data: res.ImageData, MimeType: res.ImageMime}
}
