package tryon

import (
	"fmt"
	"strings"

	"fitroom/internal/domain"
)

// The prompts keep a hard contract across all modes: the person's face, body
// shape, pose and proportions stay fixed, lighting stays consistent, and the
// output must be photorealistic. Only the mode-specific delta changes.

func buildPrompt(req domain.TryOnRequest) string {
	switch req.Mode() {
	case domain.ModeReferenceImage:
		return buildReferencePrompt(req.Description())
	case domain.ModeBackgroundChange:
		return buildBackgroundPrompt(req.Background(), req.CameraAngle())
	default:
		return buildDescriptionPrompt(req.Description())
	}
}

func buildDescriptionPrompt(description string) string {
	return fmt.Sprintf(`You are an expert AI virtual fitting room assistant.

Task: Transform this person's image to show them wearing: %s

Requirements:
- Keep the person's face, body shape, pose, and proportions EXACTLY the same
- Add the described clothing naturally fitting their body
- Maintain realistic lighting, shadows, and fabric physics
- Keep the original background
- Ensure the clothing looks professional and realistic
- Match the style and colors from the description

Generate a photorealistic image showing the person wearing the described clothing.`, description)
}

func buildReferencePrompt(description string) string {
	var b strings.Builder
	b.WriteString(`You are an expert AI virtual fitting room assistant.

Task: Transform this person's image to show them wearing the clothing from the provided image.

Requirements:
- Keep the person's face, body shape, pose, and proportions EXACTLY the same
- Transfer the clothing from the clothing image to the person naturally
- Maintain realistic lighting, shadows, and fabric physics
- Keep the original background
- Ensure the clothing looks professional and realistic
- Match the style and colors from the clothing image`)
	if description != "" {
		b.WriteString("\n- Additional guidance from the user: ")
		b.WriteString(description)
	}
	b.WriteString("\n\nGenerate a photorealistic image showing the person wearing the clothing.")
	return b.String()
}

func buildBackgroundPrompt(background, cameraAngle string) string {
	var cameraInstruction string
	if cameraAngle != "" {
		cameraInstruction = fmt.Sprintf(`CRITICAL CAMERA ANGLE REQUIREMENT:
- You MUST change the camera angle/perspective to: %s
- This is a mandatory requirement, not optional
- The camera angle change must be clearly visible and noticeable`, cameraAngle)
	} else {
		cameraInstruction = `CAMERA ANGLE REQUIREMENT:
- You MUST change the camera angle/perspective to better match the new background environment
- The camera angle should be different from the original photo`
	}

	return fmt.Sprintf(`You are an expert AI background replacement assistant.

Task: Change the background AND camera angle/perspective of this image.

CRITICAL RULES - STRICTLY FOLLOW:
- DO NOT change the person's appearance, face, body, or clothing AT ALL
- DO NOT modify the person's pose, position, or proportions
- DO NOT alter any clothing, accessories, or items the person is wearing
- CHANGE the background to: %s

%s

- Maintain realistic lighting that matches the new background
- Ensure the person looks natural in the new environment
- Keep all shadows and reflections consistent with the new background

Generate a photorealistic image with the new background and DIFFERENT camera angle while keeping the person completely unchanged.`, background, cameraInstruction)
}

const cropPrompt = `You are an expert at analyzing product pages and extracting clothing images.

Task: Analyze this screenshot of a product page and extract the main product image showing clothing (shirt, dress, pants, jacket, etc.).

CRITICAL REQUIREMENTS:
1. Find the MAIN product image showing the clothing item clearly
2. Crop out everything except the clothing product image
3. Remove all UI elements, text, buttons, navigation, and other page elements
4. Keep only the clean product image
5. If multiple product images exist, extract the first/main one

Generate a clean, cropped image of the clothing product from this screenshot.`
