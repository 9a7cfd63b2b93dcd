package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTicketAnalysisPrompt(t *testing.T) {
	prompt := BuildTicketAnalysisPrompt("I cannot log in")

	expected := "You're a support assistant. Analyze this ticket:\n\n" +
		"\"I cannot log in\"\n\n" +
		"Return the following fields:\n" +
		"Summary: A short summary of the issue in one sentence.\n" +
		"Urgency: One of [Low, Medium, High]\n" +
		"Category: A one-word category like Login, Payment, Bug, etc.\n"

	assert.Equal(t, expected, prompt)
}

func TestBuildTicketAnalysisPrompt_DescriptionVerbatim(t *testing.T) {
	desc := "Quote \"inside\", 100% broken\nsecond line"

	prompt := BuildTicketAnalysisPrompt(desc)

	// No escaping or formatting verbs applied to the description
	assert.Contains(t, prompt, "\""+desc+"\"")
}
