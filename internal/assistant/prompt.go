package assistant

import (
	"fmt"
	"strings"

	"github.com/rohits-web03/robotutor/internal/models"
)

func buildAskPrompt(question string, snippets []Snippet, profile *models.UserProfile, language string) string {
	var b strings.Builder

	if p := profileBlock(profile); p != "" {
		b.WriteString(p)
		b.WriteString("Adapt your answer to the user's background and experience level.\n\n")
	}

	b.WriteString("Context from the textbook:\n")
	if len(snippets) == 0 {
		b.WriteString("(no relevant passages were found)\n")
	} else {
		for _, s := range snippets {
			b.WriteString(s.Text)
			b.WriteString("\n\n")
		}
	}

	if language == "ur" {
		b.WriteString("\nPlease respond in Urdu (اردو) with proper RTL formatting.\n")
	} else if language != "" && language != "en" {
		fmt.Fprintf(&b, "\nPlease respond in the language with code %q.\n", language)
	}

	fmt.Fprintf(&b, "\nUser Question: %s\n\nAnswer:", question)
	return b.String()
}

func buildPersonalizePrompt(content string, profile *models.UserProfile) string {
	var b strings.Builder
	b.WriteString("Adapt the following educational content for a user with this profile:\n")
	b.WriteString(profileBlock(profile))
	fmt.Fprintf(&b, "\nOriginal Content:\n%s\n\n", content)
	b.WriteString("Adjust complexity to the experience level, add examples relevant to the ")
	b.WriteString("user's background, and keep the structure and key concepts intact.\n\nPersonalized Content:")
	return b.String()
}

func buildTranslatePrompt(content string) string {
	return fmt.Sprintf("Translate the following text to Urdu (اردو). "+
		"Keep technical terms in English when they have no common Urdu equivalent, "+
		"and use proper RTL formatting.\n\nText to translate:\n%s\n\nUrdu Translation:", content)
}

func profileBlock(profile *models.UserProfile) string {
	if profile == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Software Background: %s\n", orUnknown(profile.SoftwareBackground))
	fmt.Fprintf(&b, "- Hardware Background: %s\n", orUnknown(profile.HardwareBackground))
	fmt.Fprintf(&b, "- Experience Level: %s\n", orUnknown(profile.ExperienceLevel))
	fmt.Fprintf(&b, "- Operating System: %s\n", orUnknown(profile.OperatingSystem))
	return b.String()
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}
