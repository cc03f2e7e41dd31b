package prompt

import "fmt"

// ImagePromptVars holds variables for the portrait prompt templates
type ImagePromptVars struct {
	Subject        string
	ArchetypeName  string
	ArchetypeEmoji string
	Element        string
	Flavor         string
}

// BuildPhotoPortraitPrompt builds the prompt used when a reference photo is
// attached to the request. The photo precedes this text in the model input.
func BuildPhotoPortraitPrompt(vars ImagePromptVars) string {
	return fmt.Sprintf(`Using the attached photo as the subject reference, paint a comedic trading-card portrait of this person as "%s" (%s element).
Preserve the person's likeness and facial features from the photo.
Style: vibrant collectible-card illustration, dramatic lighting, slightly exaggerated heroic pose, props hinting at: %s.
Portrait orientation, 3:4 aspect ratio. Do not render any text, letters, numbers or logos anywhere in the image.`,
		vars.ArchetypeName,
		vars.Element,
		vars.Flavor,
	)
}

// BuildDescribedPortraitPrompt builds the text-only fallback prompt, relying
// on the model's own knowledge of the subject's appearance.
func BuildDescribedPortraitPrompt(vars ImagePromptVars) string {
	return fmt.Sprintf(`Paint a comedic trading-card portrait of %s as "%s" (%s element).
If you know what this person looks like, keep them recognizable; otherwise invent a fitting character.
Style: vibrant collectible-card illustration, dramatic lighting, slightly exaggerated heroic pose, props hinting at: %s.
Portrait orientation, 3:4 aspect ratio. Do not render any text, letters, numbers or logos anywhere in the image.`,
		vars.Subject,
		vars.ArchetypeName,
		vars.Element,
		vars.Flavor,
	)
}
