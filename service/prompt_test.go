package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizePrompt(t *testing.T) {
	prompt, err := SummarizePrompt(SummarizeInput{Text: "The quarterly report."})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "Summarize the following document clearly and concisely:\n"))
	assert.Contains(t, prompt, "The quarterly report.")
	assert.Contains(t, prompt, "Summary:")
}

func TestGroundedAnswerPrompt(t *testing.T) {
	prompt, err := GroundedAnswerPrompt(GroundedAnswerInput{
		Context:  "Lumbini is in Nepal.",
		Question: "Where is Lumbini?",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "answers questions using ONLY the provided context")
	assert.Contains(t, prompt, `respond: "`+NotFoundAnswer+`"`)
	assert.Contains(t, prompt, "Context:\nLumbini is in Nepal.\n")
	assert.Contains(t, prompt, "Question:\nWhere is Lumbini?\nAnswer:")
	assert.Less(t, strings.Index(prompt, "Context:"), strings.Index(prompt, "Question:"))
}

func TestTranslatePrompt(t *testing.T) {
	prompt, err := TranslatePrompt(TranslateInput{Text: "Good morning"})
	require.NoError(t, err)
	assert.Equal(t, "Translate this response in Nepali language\nGood morning\nNepali Translation:\n", prompt)

	prompt, err = TranslatePrompt(TranslateInput{Text: "Good morning", Language: "Hindi"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "in Hindi language")
	assert.Contains(t, prompt, "Hindi Translation:")
}

func TestPrompts_UserContentIsNotInterpreted(t *testing.T) {
	hostile := "{{.Question}} {{template \"x\"}} {{"

	prompt, err := GroundedAnswerPrompt(GroundedAnswerInput{Context: hostile, Question: "q"})
	require.NoError(t, err)
	assert.Contains(t, prompt, hostile)

	prompt, err = SummarizePrompt(SummarizeInput{Text: hostile})
	require.NoError(t, err)
	assert.Contains(t, prompt, hostile)

	prompt, err = TranslatePrompt(TranslateInput{Text: "<b>&amp;</b>"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "<b>&amp;</b>")
}
