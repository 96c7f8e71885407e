package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walkitapp/walkit/models"
	"github.com/walkitapp/walkit/services"
	"github.com/walkitapp/walkit/utils"
)

// UserController serves the authenticated user's own profile.
type UserController struct {
	db      *gorm.DB
	rewards *services.Rewards
}

// NewUserController creates a new controller instance.
func NewUserController(db *gorm.DB, rewards *services.Rewards) *UserController {
	return &UserController{db: db, rewards: rewards}
}

// Me returns the caller's profile with the derived streak and invite link.
func (u *UserController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := u.db.First(&user, "id = ?", userID).Error; err != nil {
		respondServiceError(ctx, err)
		return
	}

	streak, err := u.rewards.Streak(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to compute streak")
		return
	}

	utils.Success(ctx, gin.H{
		"user":       user,
		"streak":     streak,
		"invite_url": user.InviteURL(),
	})
}

type updateMeRequest struct {
	Name *string `json:"name"`
	Goal *int    `json:"goal"`
}

// UpdateMe patches the mutable profile fields. Identity, device binding and
// referral attribution are never writable here.
func (u *UserController) UpdateMe(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req updateMeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request body")
		return
	}
	if req.Name == nil && req.Goal == nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "nothing to update")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(utils.Sanitize(*req.Name))
		if name == "" || len(name) > 100 {
			utils.Error(ctx, http.StatusBadRequest, 40003, "invalid name")
			return
		}
		updates["name"] = name
	}
	if req.Goal != nil {
		if *req.Goal <= 0 {
			utils.Error(ctx, http.StatusBadRequest, 40004, "goal must be positive")
			return
		}
		updates["goal"] = *req.Goal
	}

	var user models.User
	if err := u.db.First(&user, "id = ?", userID).Error; err != nil {
		respondServiceError(ctx, err)
		return
	}
	if err := u.db.Model(&user).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to update profile")
		return
	}

	utils.Success(ctx, user)
}
