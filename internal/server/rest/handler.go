// Package rest exposes the HTTP and websocket API consumed by the sync
// client.
package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/logging"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/auth"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/config"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/realtime"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/repositories/records"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/services"
)

type Handler struct {
	config      *config.Config
	users       *services.UserService
	records     *services.RecordService
	attachments *services.AttachmentService
	hub         *realtime.Hub
	logger      logging.Logger
}

func NewHandler(
	cfg *config.Config,
	users *services.UserService,
	recordSvc *services.RecordService,
	attachments *services.AttachmentService,
	hub *realtime.Hub,
	logger logging.Logger,
) *Handler {
	return &Handler{
		config:      cfg,
		users:       users,
		records:     recordSvc,
		attachments: attachments,
		hub:         hub,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/ping", h.handlePing)
	e.POST("/api/v1/auth/register", h.handleRegister)
	e.POST("/api/v1/auth/login", h.handleLogin)
	e.POST("/api/v1/auth/refresh", h.handleRefresh)

	g := e.Group("/api/v1", h.requireAuth)
	g.POST("/records/:collection", h.handleCreate)
	g.GET("/records/:collection", h.handleList)
	g.GET("/records/:collection/:id", h.handleGet)
	g.PATCH("/records/:collection/:id", h.handleUpdate)
	g.DELETE("/records/:collection/:id", h.handleDelete)
	g.GET("/audit", h.handleAudit)
	g.POST("/attachments/presign-put", h.handlePresignPut)
	g.GET("/attachments/presign-get", h.handlePresignGet)

	e.GET("/api/v1/realtime", h.handleRealtime)
}

const actorKey = "actor"

// requireAuth validates the Bearer token and resolves the acting user, so
// downstream handlers can stamp audit entries and events.
func (h *Handler) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(common.AccessTokenHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return writeError(c, common.ErrUnauthorized)
		}

		userID, err := auth.GetUserIDFromToken(token, []byte(h.config.SecretKey))
		if err != nil {
			return writeError(c, err)
		}

		user, err := h.users.GetUser(c.Request().Context(), userID)
		if err != nil {
			return writeError(c, common.ErrUnauthorized)
		}

		c.Set(actorKey, services.Actor{UserID: user.ID, Email: user.Email})
		return next(c)
	}
}

func actorFrom(c echo.Context) services.Actor {
	actor, _ := c.Get(actorKey).(services.Actor)
	return actor
}

func (h *Handler) handlePing(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return writeError(c, common.ErrMissingField)
	}

	if _, err := h.users.Register(c.Request().Context(), req.Email, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) handleLogin(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"user_id":       res.User.ID,
		"email":         res.User.Email,
		"access_token":  res.Tokens.AccessToken,
		"refresh_token": res.Tokens.RefreshToken,
	})
}

func (h *Handler) handleRefresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.users.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

type fieldsRequest struct {
	Fields map[string]any `json:"fields"`
}

func (h *Handler) handleCreate(c echo.Context) error {
	var req fieldsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.records.Create(c.Request().Context(), actorFrom(c),
		common.DefaultWorkspace, c.Param("collection"), req.Fields)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) handleList(c echo.Context) error {
	f := records.Filter{
		NameFold:  c.QueryParam("name_fold"),
		ExcludeID: c.QueryParam("exclude_id"),
	}

	recs, err := h.records.List(c.Request().Context(),
		common.DefaultWorkspace, c.Param("collection"), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) handleGet(c echo.Context) error {
	rec, err := h.records.Get(c.Request().Context(),
		common.DefaultWorkspace, c.Param("collection"), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) handleUpdate(c echo.Context) error {
	var req fieldsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var expectedVersion int64
	if v := c.QueryParam("expected_version"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid expected_version")
		}
		expectedVersion = parsed
	}

	rec, err := h.records.Update(c.Request().Context(), actorFrom(c),
		common.DefaultWorkspace, c.Param("collection"), c.Param("id"),
		req.Fields, expectedVersion)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) handleDelete(c echo.Context) error {
	err := h.records.Delete(c.Request().Context(), actorFrom(c),
		common.DefaultWorkspace, c.Param("collection"), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) handleAudit(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	entries, err := h.records.ListAudit(c.Request().Context(), common.DefaultWorkspace, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) handlePresignPut(c echo.Context) error {
	var req struct {
		Filename string `json:"filename"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Filename == "" {
		return writeError(c, common.ErrMissingField)
	}

	key, url, err := h.attachments.GetPresignedPutUrl(c.Request().Context(), req.Filename)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"key": key, "url": url})
}

func (h *Handler) handlePresignGet(c echo.Context) error {
	key := c.QueryParam("key")
	if key == "" {
		return writeError(c, common.ErrMissingField)
	}

	url, err := h.attachments.GetPresignedGetUrl(c.Request().Context(), key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
