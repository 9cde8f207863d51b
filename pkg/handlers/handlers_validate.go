package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// ValidateInput handles the JSON-based validation request: structural
// checks only, no scheduling
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.Students) == 0 {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "At least one student is required"})
		return
	}
	if len(input.Preceptors) == 0 {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "At least one preceptor is required"})
		return
	}
	if len(input.Clerkships) == 0 {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "At least one clerkship is required"})
		return
	}

	for _, d := range []string{input.StartDate, input.EndDate} {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Invalid date: " + d})
			return
		}
	}
	if input.EndDate < input.StartDate {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "End date is before start date"})
		return
	}

	// Check for duplicate IDs
	studentIDs := make(map[string]bool)
	for _, s := range input.Students {
		if studentIDs[s.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate student ID: " + s.ID})
			return
		}
		studentIDs[s.ID] = true
	}

	preceptorIDs := make(map[string]bool)
	for _, p := range input.Preceptors {
		if preceptorIDs[p.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate preceptor ID: " + p.ID})
			return
		}
		preceptorIDs[p.ID] = true
	}

	clerkshipIDs := make(map[string]bool)
	for _, ck := range input.Clerkships {
		if clerkshipIDs[ck.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate clerkship ID: " + ck.ID})
			return
		}
		clerkshipIDs[ck.ID] = true
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"student_count":   len(input.Students),
			"preceptor_count": len(input.Preceptors),
			"clerkship_count": len(input.Clerkships),
		},
	})
}
