package gateway

import (
	"net/http"

	"teambridge-backend/lib/scrapers/sportsengine"
	"teambridge-backend/services/extractor"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (g *Gateway) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (g *Gateway) authenticate(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "authenticate")
	defer span.End()

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	auth, err := g.backend.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		span.RecordError(err)
		status, msg := errStatus(err)
		c.JSON(status, gin.H{"success": false, "error": msg})
		return
	}

	res := gin.H{
		"success":     true,
		"token":       auth.Token,
		"sessionData": auth.SessionData,
	}
	if auth.TaskId != "" {
		res["taskId"] = auth.TaskId
		res["taskUrl"] = auth.TaskUrl
	}
	c.JSON(http.StatusOK, res)
}

func (g *Gateway) validate(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "validate")
	defer span.End()

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "message": err.Error()})
		return
	}

	result, err := g.backend.ValidateCredentials(ctx, req.Email, req.Password)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (g *Gateway) test(c *gin.Context) {
	err := g.backend.TestConnection(c.Request.Context(), sessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "session active"})
}

func (g *Gateway) organizations(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "organizations")
	defer span.End()

	orgs, err := g.backend.GetOrganizations(ctx, sessionToken(c))
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	if orgs == nil {
		orgs = []sportsengine.Organization{}
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

func (g *Gateway) teams(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "teams")
	defer span.End()

	teams, err := g.backend.GetTeamsForOrganization(ctx, sessionToken(c), c.Param("id"))
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	if teams == nil {
		teams = []sportsengine.Team{}
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

func (g *Gateway) roster(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "roster")
	defer span.End()

	roster, err := g.backend.GetTeamRoster(ctx, sessionToken(c), c.Param("id"))
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roster": roster})
}

func (g *Gateway) migrationPreview(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "migrationPreview")
	defer span.End()

	preview, err := g.backend.GetMigrationPreview(ctx, sessionToken(c))
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preview": preview})
}

// resolver returns the delegated-task surface of the active backend,
// or nil when the direct scraper is configured.
func (g *Gateway) resolver() (extractor.TaskResolver, bool) {
	resolver, ok := g.backend.(extractor.TaskResolver)
	return resolver, ok
}

func (g *Gateway) manusWebhook(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "manusWebhook")
	defer span.End()

	resolver, ok := g.resolver()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no delegated extraction backend active"})
		return
	}

	var event extractor.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := resolver.HandleWebhook(ctx, event); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (g *Gateway) checkTaskCompletion(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "checkTaskCompletion")
	defer span.End()

	resolver, ok := g.resolver()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no delegated extraction backend active"})
		return
	}

	status, err := resolver.CheckTaskCompletion(ctx, sessionToken(c))
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type submitDataRequest struct {
	ExtractedData string `json:"extractedData" binding:"required"`
}

func (g *Gateway) submitExtractedData(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "submitExtractedData")
	defer span.End()

	resolver, ok := g.resolver()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no delegated extraction backend active"})
		return
	}

	var req submitDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := resolver.SubmitExtractedData(ctx, sessionToken(c), []byte(req.ExtractedData)); err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type migrateRequest struct {
	UserId          string   `json:"userId" binding:"required"`
	OrganizationIds []string `json:"organizationIds"`
}

func (g *Gateway) migrate(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "migrate")
	defer span.End()

	var req migrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := g.engine.Migrate(ctx, sessionToken(c), req.UserId, req.OrganizationIds)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (g *Gateway) migrationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, g.engine.Progress())
}
