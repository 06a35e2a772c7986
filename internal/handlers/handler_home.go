package handlers

import (
	"net/http"

	"github.com/SscSPs/wallet_game_backend/internal/apperrors"
	"github.com/SscSPs/wallet_game_backend/internal/dto"
	"github.com/SscSPs/wallet_game_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// getMe godoc
// @Summary Current identity
// @Description Returns the identity carried by the bearer access token.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} apperrors.AppError
// @Failure 403 {object} apperrors.AppError
// @Security BearerAuth
// @Router /auth/me [get]
func getMe(c *gin.Context) {
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		appErr := apperrors.NewUnauthorizedError("Unauthorized")
		c.JSON(appErr.Code, appErr)
		return
	}
	c.JSON(http.StatusOK, dto.ToMeResponse(identity))
}

// getHealth godoc
// @Summary Show the status of server.
// @Tags root
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func getHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
