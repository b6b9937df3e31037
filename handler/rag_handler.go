package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa-be/middleware"
	"github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/types"
	"go.uber.org/zap"
)

// DocumentQA is the document pipeline the HTTP handlers drive.
type DocumentQA interface {
	Ingest(ctx context.Context, path string) (*types.IngestResult, error)
	Summarize(ctx context.Context, path string) (string, error)
	Ask(ctx context.Context, question string, k int) (string, error)
	Translate(ctx context.Context, text string) (string, error)
	Stats(ctx context.Context) (int, error)
}

type RAGHandler struct {
	rag         DocumentQA
	fileService *service.FileService
	logger      *zap.Logger
}

func NewRAGHandler(rag DocumentQA, fileService *service.FileService, logger *zap.Logger) *RAGHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RAGHandler{
		rag:         rag,
		fileService: fileService,
		logger:      logger,
	}
}

// Register mounts the document routes on r.
func (h *RAGHandler) Register(r gin.IRoutes) {
	r.POST("/upload", h.HandleUpload)
	r.POST("/summarize", h.HandleSummarize)
	r.POST("/ask", h.HandleAsk)
	r.POST("/translate", h.HandleTranslate)
	r.GET("/health", h.HandleHealth)
}

func (h *RAGHandler) HandleUpload(c *gin.Context) {
	path, cleanup, err := h.saveUpload(c)
	if err != nil {
		h.sendError(c, err)
		return
	}
	defer cleanup()

	result, err := h.rag.Ingest(c.Request.Context(), path)
	if err != nil {
		h.sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.UploadResponse{
		Message:       "file processed",
		ChunksCreated: result.ChunksCreated,
		TextLength:    result.TextLength,
	})
}

func (h *RAGHandler) HandleSummarize(c *gin.Context) {
	path, cleanup, err := h.saveUpload(c)
	if err != nil {
		h.sendError(c, err)
		return
	}
	defer cleanup()

	summary, err := h.rag.Summarize(c.Request.Context(), path)
	if err != nil {
		h.sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.SummarizeResponse{Summary: summary})
}

func (h *RAGHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sendError(c, fmt.Errorf("%w: %v", types.ErrInvalidInput, err))
		return
	}
	if req.K == 0 {
		req.K = service.DefaultTopK
	}

	answer, err := h.rag.Ask(c.Request.Context(), req.Question, req.K)
	if err != nil {
		h.sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.AskResponse{Answer: answer})
}

func (h *RAGHandler) HandleTranslate(c *gin.Context) {
	var req types.TranslateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sendError(c, fmt.Errorf("%w: %v", types.ErrInvalidInput, err))
		return
	}

	translation, err := h.rag.Translate(c.Request.Context(), req.Text)
	if err != nil {
		h.sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.TranslateResponse{NepaliTranslation: translation})
}

func (h *RAGHandler) HandleHealth(c *gin.Context) {
	count, err := h.rag.Stats(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.HealthResponse{Status: "ok", Chunks: count})
}

func (h *RAGHandler) saveUpload(c *gin.Context) (string, func(), error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("%w: file is required", types.ErrInvalidInput)
	}
	return h.fileService.SaveTemp(header)
}

func (h *RAGHandler) sendError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("request_id", middleware.RequestID(c)), zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Info("request rejected", zap.String("request_id", middleware.RequestID(c)), zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, types.ErrorResponse{
		Status:    "error",
		Error:     err.Error(),
		RequestID: middleware.RequestID(c),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrUnsupportedFormat), errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrEmptyCollection):
		return http.StatusConflict
	case errors.Is(err, types.ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
