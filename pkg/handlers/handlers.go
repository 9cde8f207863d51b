package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/calinwolf08/LIC-sub001/pkg/auth"
	"github.com/calinwolf08/LIC-sub001/pkg/database"
	"github.com/calinwolf08/LIC-sub001/pkg/models"
	"github.com/calinwolf08/LIC-sub001/pkg/scheduler"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for scheduler routes using HMAC
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		userID, err := auth.VerifyHMACKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			c.Abort()
			return
		}

		// Fetch or create API key record to track usage
		var apiKey database.APIKey
		h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
			Key:       key,
			Name:      userID,
			RateLimit: 10000,
		})

		c.Set("apiKey", &apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// Schedule handles an initial scheduling run: build the context, run the
// greedy engine over the requested window and optionally close remaining
// gaps with the fallback pass.
func (h *Handler) Schedule(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, err := scheduler.BuildContext(&input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Existing assignments count toward requirements before generation
	scheduler.CreditAssignments(ctx, input.ExistingAssignments)

	configs := scheduler.ConfigsByID(input.Configs)
	constraints := scheduler.BuildConstraints(scheduler.ClerkshipIDs(input.Clerkships), ctx, configs)
	engine := scheduler.NewEngine(ctx, constraints, scheduler.NewTracker())
	engine.Bypass(input.BypassConstraints...)

	result, err := engine.Run()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var gapFill *models.GapFillerResult
	if input.RunGapFill && !result.Success {
		filler := scheduler.NewGapFiller(ctx, configs)
		gapFill = filler.Fill(result.UnmetRequirements)
		result.Assignments = ctx.Assignments
		result.UnmetRequirements = ctx.UnmetRequirements()
		result.Success = len(result.UnmetRequirements) == 0
		result.Summary.TotalAssignments = len(ctx.Assignments)
	}

	h.RecordUsage(c, len(input.Students), len(result.Assignments))

	c.JSON(http.StatusOK, gin.H{
		"result":   result,
		"gap_fill": gapFill,
	})
}

// Regenerate handles an incremental re-scheduling run and persists the
// audit record the core emits
func (h *Handler) Regenerate(c *gin.Context) {
	var input models.RegenerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Actor == "" {
		if userID, ok := c.Get("userID"); ok {
			input.Actor, _ = userID.(string)
		}
	}

	regen := scheduler.NewRegenerator(h.Logger)
	result, audit, err := regen.Regenerate(&input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.DB.Create(&database.ScheduleAudit{
		Strategy:    audit.Strategy,
		StartDate:   audit.StartDate,
		EndDate:     audit.EndDate,
		BeforeCount: audit.BeforeCount,
		AfterCount:  audit.AfterCount,
		Success:     audit.Success,
		Actor:       audit.Actor,
		Reason:      audit.Reason,
	})

	h.RecordUsage(c, len(input.Students), len(result.Result.Assignments))

	c.JSON(http.StatusOK, result)
}

// Impact handles a dry-run regeneration preview; nothing is persisted
func (h *Handler) Impact(c *gin.Context) {
	var input models.RegenerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	regen := scheduler.NewRegenerator(h.Logger)
	impact, err := regen.AnalyzeImpact(&input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, impact)
}

// ResolveFallback handles a single-preceptor substitution lookup through
// the designated-backup chain
func (h *Handler) ResolveFallback(c *gin.Context) {
	var input struct {
		PreceptorID  string                      `json:"preceptor_id"`
		Date         string                      `json:"date"`
		Chains       map[string][]string         `json:"chains"`
		Preceptors   []models.Preceptor          `json:"preceptors"`
		Availability []models.AvailabilityRecord `json:"availability"`
		Assignments  []models.Assignment         `json:"assignments,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, err := scheduler.NewContext(nil, input.Preceptors, nil, input.Date, input.Date, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.LoadAvailability(input.Availability)
	scheduler.CreditAssignments(ctx, input.Assignments)

	resolver := scheduler.NewChainResolver(input.Chains)
	c.JSON(http.StatusOK, resolver.Resolve(input.PreceptorID, input.Date, ctx))
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.MasterUser
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = 10000
	}

	key := auth.GenerateHMACKey(req.Name)

	// Preview (e.g., abc...beef) so the full key is shown only once
	preview := "****"
	if len(key) > 8 {
		preview = key[:3] + "..." + key[len(key)-4:]
	}

	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: preview,
		RateLimit:  req.RateLimit,
	}

	if err := h.DB.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	h.DB.Find(&keys)
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
	if err := h.DB.Delete(&database.APIKey{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	if err := h.DB.Model(&database.APIKey{}).Where("id = ?", id).Update("rate_limit", req.RateLimit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id := c.Param("id")
	var usage []database.APIUsage
	h.DB.Where("key_id = ?", id).Order("date desc").Limit(30).Find(&usage)
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

// ListAudit returns recent regeneration audit records
func (h *Handler) ListAudit(c *gin.Context) {
	var audits []database.ScheduleAudit
	h.DB.Order("created_at desc").Limit(50).Find(&audits)
	c.JSON(http.StatusOK, gin.H{"audits": audits})
}
