package controllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"beatpress/middleware"
	"beatpress/paystack"
	"beatpress/store"
	"beatpress/utils"
)

// SubscriptionController activates subscriptions through Paystack, either by
// direct verification of a transaction reference or by webhook.
type SubscriptionController struct {
	store    *store.ContentStore
	paystack *paystack.Client
}

// NewSubscriptionController creates a new SubscriptionController instance.
func NewSubscriptionController(cs *store.ContentStore, ps *paystack.Client) *SubscriptionController {
	return &SubscriptionController{store: cs, paystack: ps}
}

// Verify confirms a transaction reference with Paystack and activates the
// caller's subscription. A fresh token is returned so the subscriber flag
// takes effect without re-login.
func (s *SubscriptionController) Verify(ctx *gin.Context) {
	var req struct {
		Reference string `json:"reference" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "missing transaction reference")
		return
	}
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40140, "unauthorized")
		return
	}

	tx, err := s.paystack.VerifyTransaction(ctx.Request.Context(), req.Reference)
	if err != nil {
		utils.StoreError(ctx, fmt.Errorf("%w: %v", store.ErrVerification, err))
		return
	}
	if !tx.Succeeded() {
		utils.Error(ctx, http.StatusPaymentRequired, 40200, "transaction was not successful")
		return
	}

	user, err := s.store.ActivateSubscription(ctx.Request.Context(), identity.ID, tx.CustomerCode, tx.SubscriptionCode)
	if err != nil {
		utils.StoreError(ctx, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.IsSubscriber, tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": user})
}

// Webhook handles Paystack event notifications. The signature is validated
// over the raw body before any parsing. Paystack retries on non-200, so
// events we do not act on still answer 200.
func (s *SubscriptionController) Webhook(ctx *gin.Context) {
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, "unreadable payload")
		return
	}
	if !s.paystack.ValidSignature(payload, ctx.GetHeader("x-paystack-signature")) {
		utils.Error(ctx, http.StatusUnauthorized, 40141, "invalid signature")
		return
	}

	ev, err := paystack.ParseEvent(payload)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40072, "malformed event")
		return
	}
	if !ev.Activating() {
		utils.Success(ctx, gin.H{"message": "event ignored"})
		return
	}

	if _, err := s.store.ActivateSubscriptionByEmail(ctx.Request.Context(),
		ev.Data.Customer.Email, ev.Data.Customer.CustomerCode, ev.Data.SubscriptionCode); err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnw("webhook activation failed", "event", ev.Type, "email", ev.Data.Customer.Email, "err", err)
		}
		// Answer 200 regardless; a retry cannot fix an unknown customer
		utils.Success(ctx, gin.H{"message": "event received"})
		return
	}
	utils.Success(ctx, gin.H{"message": "subscription activated"})
}
