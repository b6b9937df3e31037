package service

import (
	"strings"
	"text/template"
)

// NotFoundAnswer is the reply the model is told to give when the retrieved
// context does not contain the answer.
const NotFoundAnswer = "This information is not present in the given file"

const DefaultTargetLanguage = "Nepali"

type SummarizeInput struct {
	Text string
}

type GroundedAnswerInput struct {
	Context  string
	Question string
}

type TranslateInput struct {
	Text     string
	Language string
}

// Field values are substituted as data and never parsed as template text.
var (
	summarizeTemplate = template.Must(template.New("summarize").Parse(
		`Summarize the following document clearly and concisely:
{{.Text}}

Summary:
`))

	groundedAnswerTemplate = template.Must(template.New("grounded_answer").Parse(
		`You are an assistant that answers questions using ONLY the provided context.
Do NOT use your own knowledge or make assumptions.
If the answer is not present in the context, respond: "{{.NotFound}}".

Context:
{{.Context}}

Question:
{{.Question}}
Answer:
`))

	translateTemplate = template.Must(template.New("translate").Parse(
		`Translate this response in {{.Language}} language
{{.Text}}
{{.Language}} Translation:
`))
)

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func SummarizePrompt(in SummarizeInput) (string, error) {
	return render(summarizeTemplate, in)
}

func GroundedAnswerPrompt(in GroundedAnswerInput) (string, error) {
	return render(groundedAnswerTemplate, struct {
		GroundedAnswerInput
		NotFound string
	}{in, NotFoundAnswer})
}

func TranslatePrompt(in TranslateInput) (string, error) {
	if in.Language == "" {
		in.Language = DefaultTargetLanguage
	}
	return render(translateTemplate, in)
}
