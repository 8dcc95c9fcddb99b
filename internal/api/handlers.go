package api

import (
	"net/http"
	"strconv"
	"strings"

	"awning-admin-api/internal/database"
	"awning-admin-api/internal/middleware"
	"awning-admin-api/internal/models"
	"awning-admin-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db           *database.MongoDBClient
	guard        *services.WorkflowGuard
	linker       *services.Linker
	documents    *services.DocumentService
	audit        *services.AuditService
	followUps    *services.FollowUpService
	jwtService   *services.JWTService
	ingestSchema *gojsonschema.Schema
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	db *database.MongoDBClient,
	guard *services.WorkflowGuard,
	linker *services.Linker,
	documents *services.DocumentService,
	audit *services.AuditService,
	followUps *services.FollowUpService,
	jwtService *services.JWTService,
	ingestSchema *gojsonschema.Schema,
) *Handlers {
	return &Handlers{
		db:           db,
		guard:        guard,
		linker:       linker,
		documents:    documents,
		audit:        audit,
		followUps:    followUps,
		jwtService:   jwtService,
		ingestSchema: ingestSchema,
	}
}

// LoginHandler handles POST /api/auth/login
// Issues a JWT for a back-office user (identity is asserted by the fronting
// SSO proxy, not checked here)
func (h *Handlers) LoginHandler(c *gin.Context) {
	var req models.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.jwtService.GenerateToken(req.UserID, req.UserName, req.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{Token: token})
}

// respondError maps a service error to the API's error tiers: not-found to
// 404, validation-shaped messages to 400, everything else to 500
func respondError(c *gin.Context, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
	case strings.Contains(msg, "required") ||
		strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "must be") ||
		strings.Contains(msg, "no price"):
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// pathID parses the named int64 path parameter, responding 400 on failure
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// currentUser returns the caller's identity for audit attribution
func currentUser(c *gin.Context) (int64, string) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		return 0, ""
	}
	return claims.UserID, claims.UserName
}
