package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"

	svix "github.com/svix/svix-webhooks/go"
)

type UserStore interface {
	UpsertUser(ctx context.Context, user *models.User) error
}

type Publisher interface {
	PublishUserCreated(user models.User) error
}

type Handler struct {
	wh     *svix.Webhook
	store  UserStore
	kafka  Publisher
	logger *logger.Logger
}

func NewHandler(signingSecret string, store UserStore, kafka Publisher, log *logger.Logger) (*Handler, error) {
	wh, err := svix.NewWebhook(signingSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init webhook verifier: %w", err)
	}
	return &Handler{wh: wh, store: store, kafka: kafka, logger: log}, nil
}

// identityEvent is the identity provider's webhook envelope.
type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// HandleUserWebhook ingests signed identity events. Unknown event types are
// acknowledged so the provider stops retrying them.
func (h *Handler) HandleUserWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if err := h.wh.Verify(payload, r.Header); err != nil {
		h.logger.Warn("WEBHOOK", fmt.Sprintf("signature verification failed: %v", err))
		utils.WriteError(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	var event identityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if event.Type != "user.created" && event.Type != "user.updated" {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if event.Data.ID == "" || len(event.Data.EmailAddresses) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "missing user id or email")
		return
	}

	user := models.User{
		ID:        event.Data.ID,
		Email:     event.Data.EmailAddresses[0].EmailAddress,
		FirstName: event.Data.FirstName,
		LastName:  event.Data.LastName,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.store.UpsertUser(r.Context(), &user); err != nil {
		h.logger.Error("WEBHOOK", fmt.Sprintf("failed to upsert user %s: %v", user.ID, err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to store user")
		return
	}

	h.logger.Info("WEBHOOK", fmt.Sprintf("%s for %s (%s)", event.Type, user.ID, user.Email))

	if h.kafka != nil && event.Type == "user.created" {
		if err := h.kafka.PublishUserCreated(user); err != nil {
			h.logger.Error("KAFKA", fmt.Sprintf("failed to publish user created for %s: %v", user.ID, err))
		}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
