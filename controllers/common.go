package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/walkitapp/walkit/middleware"
	"github.com/walkitapp/walkit/services"
	"github.com/walkitapp/walkit/utils"
)

func getUserID(ctx *gin.Context) (string, bool) {
	return middleware.UserID(ctx)
}

// respondServiceError translates a services sentinel into the HTTP status and
// business code the client sees. Unknown errors become an opaque 500.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40001, err.Error())
	case errors.Is(err, services.ErrExternalAuth):
		utils.Error(ctx, http.StatusBadRequest, 40002, err.Error())
	case errors.Is(err, services.ErrDeviceConflict):
		utils.Error(ctx, http.StatusForbidden, 40310, "device is bound to another account")
	case errors.Is(err, services.ErrInviteConsumed):
		utils.Error(ctx, http.StatusConflict, 40910, "invite already consumed")
	case errors.Is(err, services.ErrRateLimited):
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "activity already recorded in the current window")
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		utils.Error(ctx, http.StatusNotFound, 40410, "not found")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}
