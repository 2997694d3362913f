package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ledgerly/models"
	"ledgerly/services"
	"ledgerly/storage"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidEmail      = "Invalid email address."
	msgAlreadySubscribed = "You are already subscribed!"
	msgSaveFailed        = "Failed to save subscription."
	msgInternal          = "Internal server error."
)

// Notifier is the welcome email dispatcher used after a signup is stored.
type Notifier interface {
	Dispatch(ctx context.Context, email string)
}

type SubscribeHandler struct {
	store    storage.Store
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewSubscribeHandler(store storage.Store, notifier Notifier, log *slog.Logger) *SubscribeHandler {
	return &SubscribeHandler{
		store:    store,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

var errNullBody = errors.New("request body is null")

// emailFromBody extracts the email field from a JSON request body. Only
// unparseable JSON and a null body are errors. Any other shape, or an email
// that is not a JSON string, yields "" and fails validation downstream.
func emailFromBody(body []byte) (string, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", err
	}
	if doc == nil {
		return "", errNullBody
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", nil
	}
	email, _ := obj["email"].(string)
	return email, nil
}

// Subscribe handles POST /api/subscribe.
func (h *SubscribeHandler) Subscribe(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := c.GetRawData()
	if err != nil {
		h.log.ErrorContext(ctx, "subscription error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	email, err := emailFromBody(body)
	if err != nil {
		h.log.ErrorContext(ctx, "subscription error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	if !services.IsValidEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidEmail})
		return
	}

	// Cheap read first. Add below is still the authority on duplicates.
	exists, err := h.store.Exists(ctx, email)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to check subscriber", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgSaveFailed})
		return
	}
	if exists {
		// Same 200 as a fresh signup so the endpoint does not reveal who is subscribed.
		c.JSON(http.StatusOK, gin.H{"message": msgAlreadySubscribed})
		return
	}

	created, err := h.store.Add(ctx, models.NewSubscriber(email, h.now()))
	if err != nil {
		h.log.ErrorContext(ctx, "failed to save subscriber", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgSaveFailed})
		return
	}
	if !created {
		// Another request stored this email between Exists and Add.
		c.JSON(http.StatusOK, gin.H{"message": msgAlreadySubscribed})
		return
	}

	h.log.InfoContext(ctx, "subscriber saved", "email", email)
	h.notifier.Dispatch(ctx, email)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
