package controllers

import (
	"net/http"

	"runclub-backend/errs"
	"runclub-backend/middleware"
	"runclub-backend/models"
	"runclub-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PushController struct {
	Subs   repository.SubscriptionRepository
	Logger *zap.Logger
}

type subscribeRequest struct {
	Endpoint string                  `json:"endpoint" binding:"required"`
	Keys     models.SubscriptionKeys `json:"keys" binding:"required"`
	UserID   string                  `json:"user_id"`
}

type endpointRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	UserID   string `json:"user_id"`
}

// callerID resolves the authenticated user and enforces ownership: a body
// that names a different user than the caller is rejected outright.
func callerID(c *gin.Context, bodyUserID string) (uuid.UUID, *errs.Error) {
	caller := middleware.GetUserID(c)
	if bodyUserID != "" && bodyUserID != caller {
		return uuid.Nil, errs.Forbidden("subscription does not belong to the caller")
	}
	id, err := uuid.Parse(caller)
	if err != nil {
		return uuid.Nil, errs.BadRequest("invalid user ID")
	}
	return id, nil
}

func (pc *PushController) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.BadRequest(err.Error()))
		return
	}

	userID, appErr := callerID(c, req.UserID)
	if appErr != nil {
		errs.Respond(c, appErr)
		return
	}

	if err := pc.Subs.Upsert(c.Request.Context(), userID, req.Endpoint, req.Keys); err != nil {
		pc.Logger.Error("Failed to upsert push subscription",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		errs.Respond(c, errs.Internal("failed to save subscription"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (pc *PushController) Unsubscribe(c *gin.Context) {
	var req endpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.BadRequest(err.Error()))
		return
	}

	userID, appErr := callerID(c, req.UserID)
	if appErr != nil {
		errs.Respond(c, appErr)
		return
	}

	// Absence is not an error: unsubscribing twice is fine.
	if err := pc.Subs.Remove(c.Request.Context(), userID, req.Endpoint); err != nil {
		pc.Logger.Error("Failed to remove push subscription",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		errs.Respond(c, errs.Internal("failed to remove subscription"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (pc *PushController) CheckSubscription(c *gin.Context) {
	var req endpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.BadRequest(err.Error()))
		return
	}

	userID, appErr := callerID(c, req.UserID)
	if appErr != nil {
		errs.Respond(c, appErr)
		return
	}

	exists, err := pc.Subs.Exists(c.Request.Context(), userID, req.Endpoint)
	if err != nil {
		pc.Logger.Error("Failed to check push subscription", zap.Error(err))
		errs.Respond(c, errs.Internal("failed to check subscription"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}
