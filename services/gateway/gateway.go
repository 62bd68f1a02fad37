package gateway

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"teambridge-backend/lib/scrapers/sportsengine"
	"teambridge-backend/services/extractor"
	"teambridge-backend/services/migration"
	"teambridge-backend/services/sessions"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/gateway")

const tokenContextKey = "session_token"

// Gateway is the HTTP face of the pipeline. It owns no logic of its
// own, every handler delegates to the extraction backend, the session
// store, or the migration engine.
type Gateway struct {
	backend extractor.Backend
	store   *sessions.Store
	engine  *migration.Engine
}

func New(backend extractor.Backend, store *sessions.Store, engine *migration.Engine) *Gateway {
	return &Gateway{
		backend: backend,
		store:   store,
		engine:  engine,
	}
}

func (g *Gateway) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.GET("/health", g.health)
	api.POST("/authenticate", g.authenticate)
	api.POST("/validate", g.validate)
	api.POST("/manus-webhook", g.manusWebhook)

	authed := api.Group("", g.requireToken)
	authed.GET("/test", g.test)
	authed.GET("/organizations", g.organizations)
	authed.GET("/organizations/:id/teams", g.teams)
	authed.GET("/teams/:id/roster", g.roster)
	authed.GET("/migration-preview", g.migrationPreview)
	authed.POST("/check-task-completion", g.checkTaskCompletion)
	authed.POST("/submit-extracted-data", g.submitExtractedData)
	authed.POST("/migrate", g.migrate)
	authed.GET("/migration-status", g.migrationStatus)

	return router
}

func (g *Gateway) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing bearer token",
		})
		return
	}
	c.Set(tokenContextKey, token)
	c.Next()
}

func sessionToken(c *gin.Context) string {
	return c.GetString(tokenContextKey)
}

// errStatus folds the error taxonomy into an HTTP status plus a
// message safe to hand to the caller.
func errStatus(err error) (int, string) {
	var authErr *sportsengine.AuthenticationError
	var extErr *sportsengine.ExtractionError

	switch {
	case errors.Is(err, sessions.ErrNoSession):
		return http.StatusUnauthorized, "session expired, please reauthenticate"
	case errors.Is(err, extractor.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, "extraction backend unavailable, try again later"
	case errors.Is(err, extractor.ErrTaskPending):
		return http.StatusConflict, "extraction still in progress, check task completion"
	case errors.Is(err, migration.ErrAlreadyRunning):
		return http.StatusConflict, migration.ErrAlreadyRunning.Error()
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, authErr.Message
	case errors.As(err, &extErr):
		return http.StatusBadGateway, extErr.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(c *gin.Context, err error) {
	status, msg := errStatus(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("err", err.Error()))
	}
	c.JSON(status, gin.H{"error": msg})
}
