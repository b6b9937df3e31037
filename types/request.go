package types

type AskRequest struct {
	Question string `form:"question" binding:"required"`
	K        int    `form:"k"`
}

type TranslateRequest struct {
	Text string `form:"text" binding:"required"`
}
