package web

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/vidlens/vidlens/pkg/models"
	"github.com/vidlens/vidlens/pkg/persistence"
	"github.com/vidlens/vidlens/pkg/services"
)

const analysisFailureMessage = "Error during analysis"

type APIHandlers struct {
	analysisService *services.Analysis
	validator       *validator.Validate
	uploadDir       string
}

func NewAPIHandlers(
	analysisService *services.Analysis,
	validator *validator.Validate,
	uploadDir string,
) *APIHandlers {
	return &APIHandlers{
		analysisService: analysisService,
		validator:       validator,
		uploadDir:       uploadDir,
	}
}

func (h *APIHandlers) CreateYouTubeAnalysis(c fiber.Ctx) error {
	var req CreateYouTubeAnalysisRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	record, err := h.analysisService.AnalyzeYouTube(c.Context(), req.VideoURL)
	if err != nil {
		return handleServiceError(c, err)
	}

	return respondWithRecord(c, record)
}

func (h *APIHandlers) CreateUploadAnalysis(c fiber.Ctx) error {
	file, err := c.FormFile("video")
	if err != nil {
		return badRequest(c, "A video file is required in the 'video' field")
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), ".mp4") {
		return badRequest(c, "Only .mp4 files are supported")
	}

	if contentType := file.Header.Get("Content-Type"); contentType != "" && contentType != "video/mp4" {
		return badRequest(c, "Only video/mp4 content is supported")
	}

	videoPath := filepath.Join(h.uploadDir, uuid.NewString()+".mp4")
	if err := c.SaveFile(file, videoPath); err != nil {
		return internalError(c, err)
	}

	record, err := h.analysisService.AnalyzeUpload(c.Context(), videoPath, file.Filename)
	if err != nil {
		return handleServiceError(c, err)
	}

	return respondWithRecord(c, record)
}

// respondWithRecord maps a terminal record to its HTTP shape. A successful
// run is a created resource; a failed or skipped run reports its recorded
// errors without rewording them.
func respondWithRecord(c fiber.Ctx, record *models.Analysis) error {
	if record.Status == models.StatusSuccess {
		return c.Status(fiber.StatusCreated).JSON(TransformAnalysisResponse(record))
	}

	return c.Status(fiber.StatusBadRequest).JSON(AnalysisFailureResponse{
		Error:   analysisFailureMessage,
		Details: record.Errors,
	})
}

func (h *APIHandlers) GetAnalyses(c fiber.Ctx) error {
	req, err := h.parseListAnalysesRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.analysisService.ListAnalyses(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	items := make([]AnalysisListItem, 0, len(result.Analyses))
	for _, analysis := range result.Analyses {
		items = append(items, TransformAnalysisListItem(analysis))
	}

	return c.JSON(fiber.Map{
		"analyses":      items,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
		"sorting": fiber.Map{
			"sort_by":    req.SortBy,
			"sort_order": req.SortOrder,
		},
	})
}

// parseListAnalysesRequest parses and validates query parameters for listing analyses.
func (h *APIHandlers) parseListAnalysesRequest(c fiber.Ctx) (*services.ListAnalysesRequest, error) {
	req := &services.ListAnalysesRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	req.Status = c.Query("status")
	req.SortBy = c.Query("sort_by")
	req.SortOrder = c.Query("sort_order")

	return req, nil
}

func (h *APIHandlers) GetAnalysis(c fiber.Ctx) error {
	id := c.Params("id")

	if id == "" {
		return badRequest(c, "Analysis ID is required")
	}

	analysis, err := h.analysisService.GetAnalysis(c.Context(), id)
	if err != nil {
		if persistence.IsAnalysisNotFound(err) {
			return notFound(c, "Analysis not found")
		}

		return handleServiceError(c, err)
	}

	return c.JSON(TransformAnalysisListItem(analysis))
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.analysisService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Vidlens API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Vidlens API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
