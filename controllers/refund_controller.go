package controllers

import (
	"net/http"

	"runclub-backend/errs"
	"runclub-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RefundController struct {
	Refunds services.RefundService
}

type refundRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Reason        string `json:"reason"`
}

// Refund drives the refund saga for one transaction. A response with
// success=true and a warning means the money was returned but a local write
// is still catching up.
func (rc *RefundController) Refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.BadRequest(err.Error()))
		return
	}

	txID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		errs.Respond(c, errs.BadRequest("invalid transaction_id"))
		return
	}

	result, svcErr := rc.Refunds.Refund(c.Request.Context(), txID, req.Reason)
	if svcErr != nil {
		errs.Respond(c, svcErr)
		return
	}

	resp := gin.H{
		"success":   true,
		"refund_id": result.RefundID,
		"status":    result.Status,
	}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	c.JSON(http.StatusOK, resp)
}
