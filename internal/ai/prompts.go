package ai

import (
	"fmt"
	"strings"
)

// DescribeInstruction asks the vision model for the facial features that matter
// when redrawing the subject in the given style.
func DescribeInstruction(style string) string {
	return fmt.Sprintf(
		"Describe the facial features of the person in this photo concisely, for constructing a %s-style avatar. "+
			"Cover face shape, hair, eyes, skin tone, facial hair, glasses and expression. Answer in one paragraph.",
		style,
	)
}

// GenerationPrompt embeds the style and the subject description into a request
// for one square, head-and-shoulders avatar.
func GenerationPrompt(style string, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A %s-style avatar portrait of a single person, head and shoulders, centered, square composition. ", style)
	if description = strings.TrimSpace(description); description != "" {
		fmt.Fprintf(&b, "Subject: %s ", description)
	}
	fmt.Fprintf(&b, "Preserve the subject's likeness while fully applying the %s aesthetic. No text, no watermark.", style)
	return b.String()
}
