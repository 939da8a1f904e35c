package tryon

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"fitroom/internal/domain"
	"fitroom/internal/imaging"
)

// PageExtractor supplies clothing candidates for URL-based requests.
type PageExtractor interface {
	Extract(ctx context.Context, pageURL string) (domain.ExtractionResult, error)
}

// Service is the pipeline facade. Each method validates its mode's inputs,
// normalizes every image, composes the acquisition stages for URL flows, and
// delegates to the orchestrator. It performs no retries of its own.
type Service struct {
	orchestrator *Orchestrator
	cropper      *Cropper
	extractor    PageExtractor

	// Candidates above this byte size are treated as full-page screenshots
	// and sent through the cropper first.
	cropThreshold int64

	logger zerolog.Logger
}

// ServiceOptions collects the facade's collaborators.
type ServiceOptions struct {
	Generator          ContentGenerator
	Extractor          PageExtractor
	Policy             Policy
	CropThresholdBytes int64
	Logger             zerolog.Logger
}

// NewService builds the facade and its internal stages.
func NewService(opts ServiceOptions) *Service {
	threshold := opts.CropThresholdBytes
	if threshold <= 0 {
		threshold = 512000
	}
	return &Service{
		orchestrator:  NewOrchestrator(opts.Generator, opts.Policy, opts.Logger),
		cropper:       NewCropper(opts.Generator, opts.Logger),
		extractor:     opts.Extractor,
		cropThreshold: threshold,
		logger:        opts.Logger,
	}
}

// TryOnWithDescription dresses the person in clothing described by text.
func (s *Service) TryOnWithDescription(ctx context.Context, person domain.ImageAsset, description string) (domain.ImageAsset, error) {
	normPerson, err := imaging.Normalize(person)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	req, err := domain.NewTextDescribed(normPerson, description)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	return s.orchestrator.Generate(ctx, req)
}

// TryOnWithImage transfers the garment from a reference image onto the person.
func (s *Service) TryOnWithImage(ctx context.Context, person, clothing domain.ImageAsset, description string) (domain.ImageAsset, error) {
	normPerson, err := imaging.Normalize(person)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	normClothing, err := imaging.Normalize(clothing)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	req, err := domain.NewReferenceImage(normPerson, normClothing, description)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	return s.orchestrator.Generate(ctx, req)
}

// TryOnFromURL extracts a garment image from a product page, crops it out of
// a screenshot when the candidate looks like a full page, and runs the
// reference-image flow on the result.
func (s *Service) TryOnFromURL(ctx context.Context, person domain.ImageAsset, pageURL, description string) (domain.ImageAsset, error) {
	if strings.TrimSpace(pageURL) == "" {
		return domain.ImageAsset{}, domain.Fail(domain.KindValidation, "product url is required")
	}

	res, err := s.extractor.Extract(ctx, pageURL)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	if len(res.Candidates) == 0 {
		return domain.ImageAsset{}, domain.Fail(domain.KindNoImagesFound, "no product images found on the page")
	}

	clothing := res.Candidates[0]
	s.logger.Info().
		Str("tier", string(res.Tier)).
		Int("candidates", len(res.Candidates)).
		Int("selected_bytes", clothing.Size()).
		Msg("tryon: selected clothing candidate")

	if int64(clothing.Size()) > s.cropThreshold {
		clothing = s.cropper.Crop(ctx, clothing)
	}

	return s.TryOnWithImage(ctx, person, clothing, description)
}

// ChangeBackground replaces the backdrop while leaving the person untouched.
func (s *Service) ChangeBackground(ctx context.Context, person domain.ImageAsset, background, cameraAngle string) (domain.ImageAsset, error) {
	normPerson, err := imaging.Normalize(person)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	req, err := domain.NewBackgroundChange(normPerson, background, cameraAngle)
	if err != nil {
		return domain.ImageAsset{}, err
	}
	return s.orchestrator.Generate(ctx, req)
}
