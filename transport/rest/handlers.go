package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oxalis-games/tictactoe/internal/apperror"
)

func (that *Server) handlePing(ctx *gin.Context) {
	ctx.String(http.StatusOK, "pong")
}

func (that *Server) handleSessionState(ctx *gin.Context) {
	log := that.logger.With("method", "handleSessionState")

	state, err := that.games.State(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": apperror.ErrSessionNotFound.Error()})
			return
		}

		log.Error("failed to read session state", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})

		return
	}

	ctx.JSON(http.StatusOK, state)
}
