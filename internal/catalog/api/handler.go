package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-booking/internal/catalog"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *catalog.Service
	Logger  *logger.Logger
}

func NewHandler(service *catalog.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// ---------------- PUBLIC ----------------

func (h *Handler) ListPublishedEvents(w http.ResponseWriter, r *http.Request) {
	upcomingOnly := r.URL.Query().Get("upcoming") == "1"

	events, err := h.Service.ListEvents(r.Context(), false, upcomingOnly)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListPublishedEvents: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	utils.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) GetPublishedEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.Service.GetPublishedEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			utils.WriteError(w, http.StatusNotFound, "event not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetPublishedEvent: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to load event")
		return
	}

	utils.WriteJSON(w, http.StatusOK, event)
}

// ---------------- ADMIN ----------------

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.Event
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.Service.CreateEvent(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateEvent: created event %s", event.ID))
	utils.WriteJSON(w, http.StatusCreated, event)
}

func (h *Handler) ListAllEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Service.ListEvents(r.Context(), true, false)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAllEvents: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	utils.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req models.Event
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = eventID

	if err := h.Service.UpdateEvent(r.Context(), req); err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			utils.WriteError(w, http.StatusNotFound, "event not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"id": eventID})
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	err := h.Service.DeleteEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, catalog.ErrEventHasOrders) {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DeleteEvent: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

func (h *Handler) UnpublishEvent(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *Handler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	eventID := chi.URLParam(r, "eventId")

	if err := h.Service.SetPublished(r.Context(), eventID, published); err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			utils.WriteError(w, http.StatusNotFound, "event not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("setPublished: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"id": eventID, "is_published": published})
}

// PresignUpload hands the admin UI a direct-to-storage upload URL.
func (h *Handler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileName string `json:"file_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileName == "" {
		utils.WriteError(w, http.StatusBadRequest, "file_name is required")
		return
	}

	uploadURL, publicURL, objectKey, err := h.Service.PresignImageUpload(r.Context(), req.FileName)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PresignUpload: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to generate upload URL")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"upload_url": uploadURL,
		"public_url": publicURL,
		"object_key": objectKey,
	})
}

func (h *Handler) AttachImage(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req struct {
		URL       string `json:"url"`
		ObjectKey string `json:"object_key"`
		AltText   string `json:"alt_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" || req.ObjectKey == "" {
		utils.WriteError(w, http.StatusBadRequest, "url and object_key are required")
		return
	}

	image, err := h.Service.AttachImage(r.Context(), eventID, req.URL, req.ObjectKey, req.AltText)
	if err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			utils.WriteError(w, http.StatusNotFound, "event not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("AttachImage: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to attach image")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, image)
}

func (h *Handler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageId")

	if err := h.Service.RemoveImage(r.Context(), imageID); err != nil {
		if errors.Is(err, catalog.ErrImageNotFound) {
			utils.WriteError(w, http.StatusNotFound, "image not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("RemoveImage: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to remove image")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
