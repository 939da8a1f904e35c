package domain

import "strings"

// Mode selects which try-on variant a request carries.
type Mode string

const (
	ModeTextDescribed    Mode = "text-described"
	ModeReferenceImage   Mode = "reference-image"
	ModeBackgroundChange Mode = "background-change"
)

// TryOnRequest is a generation request with exactly one active mode. The
// fields are unexported so a request can only exist in a valid shape; the
// constructors enforce the per-mode requirements once, at the boundary.
type TryOnRequest struct {
	mode          Mode
	person        ImageAsset
	clothingImage ImageAsset
	description   string
	background    string
	cameraAngle   string
}

// NewTextDescribed builds a request that dresses the person in clothing
// described by text.
func NewTextDescribed(person ImageAsset, description string) (TryOnRequest, error) {
	if person.IsZero() {
		return TryOnRequest{}, Fail(KindValidation, "person image is required")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return TryOnRequest{}, Fail(KindValidation, "clothing description is required")
	}
	return TryOnRequest{
		mode:        ModeTextDescribed,
		person:      person,
		description: description,
	}, nil
}

// NewReferenceImage builds a request that transfers clothing from a
// reference image onto the person. The description is optional context.
func NewReferenceImage(person, clothing ImageAsset, description string) (TryOnRequest, error) {
	if person.IsZero() {
		return TryOnRequest{}, Fail(KindValidation, "person image is required")
	}
	if clothing.IsZero() {
		return TryOnRequest{}, Fail(KindValidation, "clothing image is required")
	}
	return TryOnRequest{
		mode:          ModeReferenceImage,
		person:        person,
		clothingImage: clothing,
		description:   strings.TrimSpace(description),
	}, nil
}

// NewBackgroundChange builds a request that replaces the background while
// leaving the person untouched. The camera angle is optional; when present
// it becomes a mandatory instruction for the model.
func NewBackgroundChange(person ImageAsset, background, cameraAngle string) (TryOnRequest, error) {
	if person.IsZero() {
		return TryOnRequest{}, Fail(KindValidation, "person image is required")
	}
	background = strings.TrimSpace(background)
	if background == "" {
		return TryOnRequest{}, Fail(KindValidation, "background description is required")
	}
	return TryOnRequest{
		mode:        ModeBackgroundChange,
		person:      person,
		background:  background,
		cameraAngle: strings.TrimSpace(cameraAngle),
	}, nil
}

func (r TryOnRequest) Mode() Mode                { return r.mode }
func (r TryOnRequest) Person() ImageAsset        { return r.person }
func (r TryOnRequest) ClothingImage() ImageAsset { return r.clothingImage }
func (r TryOnRequest) Description() string       { return r.description }
func (r TryOnRequest) Background() string        { return r.background }
func (r TryOnRequest) CameraAngle() string       { return r.cameraAngle }
