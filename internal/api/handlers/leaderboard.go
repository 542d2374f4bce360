package handlers

import (
	"context"
	"errors"

	"puzzleboard/internal/models"
	"puzzleboard/internal/service"
	"puzzleboard/internal/websocket"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	fiberws "github.com/gofiber/websocket/v2"
)

// ResultService is the behaviour the HTTP layer needs from the service
type ResultService interface {
	Preview(text string) (*models.ParsedResult, error)
	Submit(ctx context.Context, userID, text string) (*models.ParsedResult, error)
	Games() []models.GameInfo
	Members(ctx context.Context, groupID string) ([]string, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	DailyRankings(ctx context.Context, groupID, gameID, date string) (*models.RankingsResponse, error)
	HistoricalRankings(ctx context.Context, groupID, gameID string) (*models.RankingsResponse, error)
	CombinedDaily(ctx context.Context, groupID, date string) (*models.RankingsResponse, error)
	CombinedHistorical(ctx context.Context, groupID string) (*models.RankingsResponse, error)
	HealthCheck(ctx context.Context) error
}

// MetricsSource reports runtime counters for the health endpoint
type MetricsSource interface {
	GetMetrics() map[string]interface{}
}

// LeaderboardHandler handles HTTP requests for results and rankings
type LeaderboardHandler struct {
	service   ResultService
	hub       *websocket.Hub
	metrics   map[string]MetricsSource
	validator *validator.Validate
}

// NewLeaderboardHandler creates a new leaderboard handler. hub may be nil
// when WebSocket updates are disabled; UpgradeWebSocket then refuses
// upgrades with 503.
func NewLeaderboardHandler(service ResultService, hub *websocket.Hub) *LeaderboardHandler {
	return &LeaderboardHandler{
		service:   service,
		hub:       hub,
		metrics:   make(map[string]MetricsSource),
		validator: validator.New(),
	}
}

// WithMetrics exposes a component's metrics on the health endpoint
func (h *LeaderboardHandler) WithMetrics(name string, source MetricsSource) *LeaderboardHandler {
	h.metrics[name] = source
	return h
}

// Register mounts the API routes on router (normally /api/v1)
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Post("/parse", h.Preview)
	router.Post("/results", h.Submit)
	router.Get("/games", h.ListGames)
	router.Get("/health", h.HealthCheck)

	groups := router.Group("/groups/:group")
	groups.Get("/members", h.ListMembers)
	groups.Post("/members", h.AddMember)
	groups.Delete("/members", h.RemoveMember)
	groups.Get("/rankings/daily", h.DailyRankings)
	groups.Get("/rankings/historical", h.HistoricalRankings)
	groups.Get("/rankings/combined", h.CombinedRankings)
}

// Preview handles POST /api/v1/parse
// @Summary Parse share text
// @Description Recognises pasted share text without storing it
// @Accept json
// @Produce json
// @Param request body models.ParseRequest true "Share text"
// @Success 200 {object} models.ParsedResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/v1/parse [post]
func (h *LeaderboardHandler) Preview(c *fiber.Ctx) error {
	var req models.ParseRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	result, err := h.service.Preview(req.Text)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// Submit handles POST /api/v1/results
// @Summary Submit a result
// @Description Parses share text for a user and queues it for storage
// @Accept json
// @Produce json
// @Param request body models.SubmitRequest true "Result submission"
// @Success 202 {object} models.ParsedResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/v1/results [post]
func (h *LeaderboardHandler) Submit(c *fiber.Ctx) error {
	var req models.SubmitRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	result, err := h.service.Submit(c.Context(), req.UserID, req.Text)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(result)
}

// ListGames handles GET /api/v1/games
func (h *LeaderboardHandler) ListGames(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.service.Games())
}

// ListMembers handles GET /api/v1/groups/:group/members
func (h *LeaderboardHandler) ListMembers(c *fiber.Ctx) error {
	group, err := h.groupParam(c)
	if err != nil {
		return err
	}

	members, err := h.service.Members(c.Context(), group)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"groupId": group,
		"members": members,
	})
}

// AddMember handles POST /api/v1/groups/:group/members
func (h *LeaderboardHandler) AddMember(c *fiber.Ctx) error {
	group, err := h.groupParam(c)
	if err != nil {
		return err
	}
	var req models.MemberRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	if err := h.service.AddMember(c.Context(), group, req.UserID); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"groupId": group,
		"userId":  req.UserID,
	})
}

// RemoveMember handles DELETE /api/v1/groups/:group/members
func (h *LeaderboardHandler) RemoveMember(c *fiber.Ctx) error {
	group, err := h.groupParam(c)
	if err != nil {
		return err
	}
	var req models.MemberRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	if err := h.service.RemoveMember(c.Context(), group, req.UserID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DailyRankings handles GET /api/v1/groups/:group/rankings/daily?game=&date=
// @Summary Daily ranking
// @Description Ranks a group's results for one game on one date (default today)
// @Produce json
// @Param group path string true "Group id"
// @Param game query string true "Game id"
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} models.RankingsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/groups/{group}/rankings/daily [get]
func (h *LeaderboardHandler) DailyRankings(c *fiber.Ctx) error {
	group, err := h.groupParam(c)
	if err != nil {
		return err
	}

	resp, err := h.service.DailyRankings(c.Context(), group, c.Query("game"), c.Query("date"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// HistoricalRankings handles GET /api/v1/groups/:group/rankings/historical?game=
func (h *LeaderboardHandler) HistoricalRankings(c *fiber.Ctx) error {
	group, err := h.groupParam(c)
	if err != nil {
		return err
	}

	resp, err := h.service.HistoricalRankings(c.Context(), group, c.Query("game"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// CombinedRankings handles GET /api/v1/groups/:group/rankings/combined.
// scope=alltime combines all-time rankings; otherwise date (default today).
func (h *LeaderboardHandler) CombinedRankings(c *fiber.Ctx) error {
	group, err := h.groupParam(c)
	if err != nil {
		return err
	}

	var resp *models.RankingsResponse
	switch scope := c.Query("scope", service.ScopeDaily); scope {
	case service.ScopeAllTime:
		resp, err = h.service.CombinedHistorical(c.Context(), group)
	case service.ScopeDaily:
		resp, err = h.service.CombinedDaily(c.Context(), group, c.Query("date"))
	default:
		return fiber.NewError(fiber.StatusBadRequest, "scope must be daily or alltime, got "+scope)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// HealthCheck handles GET /api/v1/health
// @Summary Health check
// @Description Checks the health of the service and its dependencies
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} models.ErrorResponse
// @Router /api/v1/health [get]
func (h *LeaderboardHandler) HealthCheck(c *fiber.Ctx) error {
	if err := h.service.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error:   "Health check failed",
			Message: err.Error(),
		})
	}

	body := fiber.Map{
		"status":  "healthy",
		"message": "All systems operational",
	}
	for name, source := range h.metrics {
		body[name] = source.GetMetrics()
	}
	if h.hub != nil {
		body["websocket_clients"] = h.hub.GetClientCount()
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// UpgradeWebSocket guards /ws: it lets WebSocket upgrades through to
// HandleWebSocket and rejects everything else.
func (h *LeaderboardHandler) UpgradeWebSocket(c *fiber.Ctx) error {
	if h.hub == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "live updates are disabled")
	}
	if fiberws.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket serves WS /ws; ?group= follows one group's version
func (h *LeaderboardHandler) HandleWebSocket(c *fiberws.Conn) {
	if h.hub == nil {
		_ = c.Close()
		return
	}
	websocket.ServeWS(h.hub, c, c.Query("group"))
}

// bind parses and validates a JSON body
func (h *LeaderboardHandler) bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := h.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "validation failed: "+err.Error())
	}
	return nil
}

func (h *LeaderboardHandler) groupParam(c *fiber.Ctx) (string, error) {
	group := c.Params("group")
	if err := h.validator.Var(group, "required,max=64,printascii"); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid group: "+err.Error())
	}
	return group, nil
}

// ErrorHandler renders errors returned by handlers and middleware as
// models.ErrorResponse
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Error:   utils.StatusMessage(code),
		Message: err.Error(),
	})
}

// respondError maps service errors to HTTP statuses
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	title := "Request failed"

	switch {
	case errors.Is(err, service.ErrUnrecognized):
		status, title = fiber.StatusUnprocessableEntity, service.ErrUnrecognized.Error()
	case errors.Is(err, service.ErrUnknownGame), errors.Is(err, service.ErrInvalidDate):
		status, title = fiber.StatusBadRequest, "Invalid query"
	case errors.Is(err, service.ErrNotFound):
		status, title = fiber.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrBusy):
		status, title = fiber.StatusServiceUnavailable, "Busy"
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error:   title,
		Message: err.Error(),
	})
}
