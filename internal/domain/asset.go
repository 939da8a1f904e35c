package domain

// ImageAsset is an immutable image payload moving between pipeline stages.
// Ownership passes with the value; a stage must not retain the byte slice
// after handing the asset to the next stage.
type ImageAsset struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// Size returns the byte length of the encoded image.
func (a ImageAsset) Size() int {
	return len(a.Data)
}

// IsZero reports whether the asset carries no image bytes.
func (a ImageAsset) IsZero() bool {
	return len(a.Data) == 0
}

// Tier names the extraction strategy that produced a candidate set.
type Tier string

const (
	TierSelector   Tier = "selector-match"
	TierGeneric    Tier = "generic-scan"
	TierScreenshot Tier = "screenshot"
)

// ExtractionResult is an ordered candidate list plus the tier that found it.
type ExtractionResult struct {
	Candidates []ImageAsset
	Tier       Tier
}
