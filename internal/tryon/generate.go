package tryon

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"fitroom/internal/domain"
	"fitroom/internal/providers/genai"
)

// ContentGenerator is the boundary to the multimodal generation service: an
// ordered list of parts in, an image and/or text out.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts []genai.Part) (genai.Result, error)
}

// Orchestrator builds the mode-specific prompt, submits it with rate-limit
// retries, and pulls the generated image out of the response.
type Orchestrator struct {
	gen    ContentGenerator
	policy Policy
	logger zerolog.Logger
}

// NewOrchestrator wires the orchestrator with its retry policy.
func NewOrchestrator(gen ContentGenerator, policy Policy, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{gen: gen, policy: policy, logger: logger}
}

// Generate runs one generation for the request. A response containing only
// text is terminal: the model declined, and asking again with the same
// prompt would burn quota for the same refusal.
func (o *Orchestrator) Generate(ctx context.Context, req domain.TryOnRequest) (domain.ImageAsset, error) {
	parts := assembleParts(req)

	var result genai.Result
	err := o.policy.run(ctx, func() error {
		res, callErr := o.gen.GenerateContent(ctx, parts)
		if callErr != nil {
			o.logger.Warn().Err(callErr).Str("mode", string(req.Mode())).Msg("tryon: generation attempt failed")
			return callErr
		}
		result = res
		return nil
	})
	if err != nil {
		var classified *domain.Failure
		if errors.As(err, &classified) {
			return domain.ImageAsset{}, err
		}
		return domain.ImageAsset{}, domain.Wrap(domain.KindGeneration, "image generation failed", err)
	}

	if !result.HasImage() {
		snippet := strings.TrimSpace(result.Text)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		o.logger.Warn().Str("mode", string(req.Mode())).Str("text", snippet).Msg("tryon: model returned text instead of an image")
		return domain.ImageAsset{}, domain.Fail(domain.KindNoImageReturned,
			"the model answered with text instead of an image")
	}

	return domain.ImageAsset{Data: result.ImageData, MimeType: result.ImageMime}, nil
}

// assembleParts orders the payload the way the model expects it: the person
// image first, the clothing reference second when present, the instruction
// text last.
func assembleParts(req domain.TryOnRequest) []genai.Part {
	person := req.Person()
	parts := []genai.Part{genai.ImagePart(person.Data, person.MimeType)}
	if req.Mode() == domain.ModeReferenceImage {
		clothing := req.ClothingImage()
		parts = append(parts, genai.ImagePart(clothing.Data, clothing.MimeType))
	}
	return append(parts, genai.TextPart(buildPrompt(req)))
}
