package image

import "strings"

const (
	modifyItemInstruction = "Realistically adjust the product's lighting, shadows, and reflections to seamlessly blend it with the scene."
	keepItemInstruction   = "Do NOT modify the product itself; only add realistic shadows underneath and around it to ground it in the scene."
)

// BuildScenePrompt converts the user's scene description into the staging
// instruction sent alongside the product photo.
func BuildScenePrompt(scene string, shouldModifyItem bool) string {
	modification := keepItemInstruction
	if shouldModifyItem {
		modification = modifyItemInstruction
	}

	lines := []string{
		"You are an expert AI assistant specializing in photorealistic product staging.",
		"Your task is to take the provided product image and place it into a new scene based on the user's description.",
		"",
		"**User's Request:**",
		"- **Product:** An image of a product is provided.",
		`- **Scene Description:** "` + strings.TrimSpace(scene) + `"`,
		"",
		"**Your Instructions:**",
		"1.  Isolate the product from its original background.",
		"2.  Generate a photorealistic background scene based on the user's scene description.",
		"3.  Create the final, photorealistic composite image. " + modification,
		"4.  Your output must be a SINGLE image part containing the final composite image. Do not output any other text or images.",
	}
	return strings.Join(lines, "\n")
}
