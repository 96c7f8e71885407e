package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/walkitapp/walkit/services"
	"github.com/walkitapp/walkit/utils"
)

// AuthController handles sign-in, sign-out and token refresh.
type AuthController struct {
	auth *services.Auth
}

// NewAuthController creates a new controller instance.
func NewAuthController(auth *services.Auth) *AuthController {
	return &AuthController{auth: auth}
}

type signInRequest struct {
	IDToken    string `json:"id_token" binding:"required"`
	DeviceID   string `json:"device_id" binding:"required"`
	InviteCode string `json:"invite_code"`
}

// SignIn exchanges a verified provider token for a session token pair,
// creating and enrolling the account on first contact.
func (a *AuthController) SignIn(ctx *gin.Context) {
	var req signInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "id_token and device_id are required")
		return
	}

	result, err := a.auth.SignIn(ctx.Request.Context(), req.IDToken, req.DeviceID, req.InviteCode)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	pair, err := utils.GenerateTokenPair(result.User.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to issue tokens")
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	utils.Respond(ctx, status, 0, "success", gin.H{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    result.User,
		"created": result.Created,
	})
}

type signOutRequest struct {
	Refresh string `json:"refresh" binding:"required"`
	Access  string `json:"access"`
}

// SignOut blacklists the presented tokens until their natural expiry.
func (a *AuthController) SignOut(ctx *gin.Context) {
	var req signOutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "refresh token is required")
		return
	}

	if claims, err := utils.ParseTokenOfType(req.Refresh, utils.TokenTypeRefresh); err == nil {
		utils.BlacklistToken(req.Refresh, claims.ExpiresAt.Time)
	}
	if req.Access != "" {
		if claims, err := utils.ParseTokenOfType(req.Access, utils.TokenTypeAccess); err == nil {
			utils.BlacklistToken(req.Access, claims.ExpiresAt.Time)
		}
	}

	utils.Success(ctx, gin.H{"signed_out": true})
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Refresh rotates a valid refresh token into a fresh pair. The old refresh
// token is retired so each one is usable exactly once.
func (a *AuthController) Refresh(ctx *gin.Context) {
	var req refreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "refresh token is required")
		return
	}

	if utils.IsTokenBlacklisted(req.Refresh) {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "token revoked")
		return
	}

	claims, err := utils.ParseTokenOfType(req.Refresh, utils.TokenTypeRefresh)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "invalid refresh token")
		return
	}

	pair, err := utils.GenerateTokenPair(claims.UserID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to issue tokens")
		return
	}
	utils.BlacklistToken(req.Refresh, claims.ExpiresAt.Time)

	utils.Success(ctx, gin.H{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}
