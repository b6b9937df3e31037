package types

type ErrorResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type UploadResponse struct {
	Message       string `json:"message"`
	ChunksCreated int    `json:"chunks_created"`
	TextLength    int    `json:"text_length"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type TranslateResponse struct {
	NepaliTranslation string `json:"nepali_translation"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Chunks int    `json:"chunks"`
}
