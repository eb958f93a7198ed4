package records

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lifelog/authgate/authgate"
)

// Handler serves the owned-record API. Every route sits behind the gate.
type Handler struct {
	gate   *authgate.Gate
	repo   Repository
	logger *slog.Logger
}

func NewHandler(gate *authgate.Gate, repo Repository, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{gate: gate, repo: repo, logger: logger}
}

type createRequest struct {
	Kind  string `json:"kind" binding:"required,max=32"`
	Title string `json:"title" binding:"max=255"`
	Body  string `json:"body"`
	// UserID is accepted for compatibility with older clients and ignored
	UserID *int64 `json:"userId"`
}

type updateRequest struct {
	Kind  string `json:"kind" binding:"required,max=32"`
	Title string `json:"title" binding:"max=255"`
	Body  string `json:"body"`
}

// Register mounts the routes on r
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api", authgate.Middleware(h.gate))

	api.POST("/records", h.create)
	// Deprecated: use /api/users/:userId/records
	api.GET("/records", authgate.RequireUserParam(h.gate, "userId"), h.list)
	api.GET("/users/:userId/records", authgate.RequireUserParam(h.gate, "userId"), h.list)

	owned := api.Group("/records/:id", authgate.RequireOwner(h.gate, h.ownerLookup))
	owned.GET("", h.get)
	owned.PUT("", h.update)
	owned.DELETE("", h.delete)
}

func (h *Handler) ownerLookup(c *gin.Context) authgate.OwnerLookup {
	id, err := recordID(c)
	if err != nil {
		return func(context.Context) (int64, error) {
			return 0, authgate.ErrOwnerNotFound
		}
	}
	return OwnerLookup(h.repo, id)
}

func (h *Handler) create(c *gin.Context) {
	owner, err := h.gate.OwnerForCreate(authgate.MustPrincipal(c.Request.Context()))
	if err != nil {
		authgate.AbortWithFailure(c, err)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	if req.UserID != nil && *req.UserID != owner {
		h.logger.Warn("ignoring client-supplied owner", "owner_user_id", owner, "requested_user_id", *req.UserID)
	}

	rec := &Record{Kind: req.Kind, OwnerUserID: owner, Title: req.Title, Body: req.Body}
	if err := h.repo.Create(c.Request.Context(), rec); err != nil {
		h.repoFailure(c, err)
		return
	}
	c.JSON(http.StatusCreated, authgate.OK(rec))
}

func (h *Handler) get(c *gin.Context) {
	id, _ := recordID(c)
	rec, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		h.repoFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, authgate.OK(rec))
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	id, _ := recordID(c)
	rec := &Record{ID: id, Kind: req.Kind, Title: req.Title, Body: req.Body}
	if err := h.repo.Update(c.Request.Context(), rec); err != nil {
		h.repoFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, authgate.OK(rec))
}

func (h *Handler) delete(c *gin.Context) {
	id, _ := recordID(c)
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.repoFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, authgate.OK(nil))
}

// list serves the caller's own records; the user scope was already checked
func (h *Handler) list(c *gin.Context) {
	p := authgate.MustPrincipal(c.Request.Context())
	recs, err := h.repo.ListByOwner(c.Request.Context(), p.UserID(), c.Query("kind"))
	if err != nil {
		h.repoFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, authgate.OK(recs))
}

func (h *Handler) repoFailure(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(c, http.StatusNotFound, string(authgate.KindResourceNotFound))
		return
	}
	h.logger.Error("records repository failed", "path", c.FullPath(), "error", err)
	writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR")
}

func recordID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, authgate.Envelope{Code: status, Message: message})
}
