package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/syncupstack/syncup-engine/internal/interval"
	"github.com/syncupstack/syncup-engine/internal/models"
	"github.com/syncupstack/syncup-engine/internal/services"
	"github.com/syncupstack/syncup-engine/internal/timezone"
)

// Handler exposes the scheduling operations over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *services.SchedulerService
}

// NewHandler constructs the HTTP handler set.
func NewHandler(logger *slog.Logger, service *services.SchedulerService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// Register mounts the routes on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	v1 := e.Group("/api/v1")
	v1.POST("/availability", h.computeAvailability)
	v1.POST("/conflicts", h.detectConflicts)
	v1.POST("/conflicts/batch", h.detectConflictsBatch)
	v1.POST("/patterns/analyze", h.analyzePattern)
	v1.POST("/suggestions", h.suggest)
	e.GET("/healthz", h.health)
}

func (h *Handler) computeAvailability(c echo.Context) error {
	var dto availabilityRequestDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	req, err := toDomainAvailabilityRequest(dto)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	windows, err := h.service.ComputeMutualAvailability(c.Request().Context(), req)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"windows": fromDomainWindows(windows)})
}

func (h *Handler) detectConflicts(c echo.Context) error {
	var dto conflictRequestDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	slot, err := toDomainInterval(dto.Slot)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	busyA, err := toDomainBusy("a", dto.BusyA)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	busyB, err := toDomainBusy("b", dto.BusyB)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	record, err := h.service.DetectConflicts(c.Request().Context(), slot, busyA, busyB, dto.BufferMinutes)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, fromDomainConflict(record))
}

func (h *Handler) detectConflictsBatch(c echo.Context) error {
	var dto conflictBatchRequestDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	domainSlots := make([]models.TimeInterval, 0, len(dto.Slots))
	for _, s := range dto.Slots {
		iv, err := toDomainInterval(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		domainSlots = append(domainSlots, iv)
	}
	busyA, err := toDomainBusy("a", dto.BusyA)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	busyB, err := toDomainBusy("b", dto.BusyB)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	records, err := h.service.DetectConflictsBatch(c.Request().Context(), domainSlots, busyA, busyB, dto.BufferMinutes, dto.Concurrency)
	if err != nil {
		return h.mapError(c, err)
	}

	out := make([]conflictRecordDTO, 0, len(records))
	for _, record := range records {
		out = append(out, fromDomainConflict(record))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"records": out})
}

func (h *Handler) analyzePattern(c echo.Context) error {
	var dto analyzeRequestDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if dto.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	history, err := toDomainHistory(dto.History)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pattern, err := h.service.AnalyzePattern(c.Request().Context(), dto.UserID, dto.Timezone, history)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, fromDomainPattern(pattern))
}

func (h *Handler) suggest(c echo.Context) error {
	var dto suggestRequestDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	req, err := toDomainAvailabilityRequest(dto.availabilityRequestDTO)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	suggestions, err := h.service.SuggestTimes(c.Request().Context(), req, dto.MaxSuggestions)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"suggestions": fromDomainSuggestions(suggestions)})
}

func (h *Handler) health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// mapError translates the engine's error taxonomy onto status codes:
// malformed input is the caller's fault, everything else is ours.
func (h *Handler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, interval.ErrInvalidInterval),
		errors.Is(err, timezone.ErrInvalidTimezone),
		errors.Is(err, timezone.ErrInvalidTime),
		errors.Is(err, timezone.ErrNonExistentLocalTime):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("operation failed", slog.String("path", c.Path()), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
