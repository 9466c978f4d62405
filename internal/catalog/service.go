package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"time"

	"ms-booking/internal/logger"
	"ms-booking/internal/models"

	"github.com/google/uuid"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrEventHasOrders = errors.New("cannot delete event with existing orders")
	ErrImageNotFound  = errors.New("image not found")
)

type DBLayer interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, includeUnpublished, upcomingOnly bool) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	SetPublished(ctx context.Context, id string, published bool) error
	DeleteEvent(ctx context.Context, id string) error
	OrdersExistForEvent(ctx context.Context, eventID string) (bool, error)
	AddImage(ctx context.Context, image *models.EventImage) error
	GetImageByID(ctx context.Context, id string) (*models.EventImage, error)
	GetImagesByEvent(ctx context.Context, eventID string) ([]models.EventImage, error)
	DeleteImage(ctx context.Context, id string) error
}

type ObjectStore interface {
	PresignedUpload(ctx context.Context, objectKey string) (uploadURL, publicURL string, err error)
	Remove(ctx context.Context, objectKey string) error
}

type Cache interface {
	Get(ctx context.Context, eventID string) (*models.Event, bool)
	Set(ctx context.Context, event *models.Event)
	Invalidate(ctx context.Context, eventID string)
}

type Service struct {
	DB     DBLayer
	Store  ObjectStore
	Cache  Cache
	Logger *logger.Logger
}

func NewService(db DBLayer, store ObjectStore, cache Cache, log *logger.Logger) *Service {
	return &Service{DB: db, Store: store, Cache: cache, Logger: log}
}

// ---------------- EVENTS ----------------

func (s *Service) CreateEvent(ctx context.Context, event models.Event) (*models.Event, error) {
	if event.Title == "" {
		return nil, errors.New("event title is required")
	}
	if event.BasePriceMinor < 0 {
		return nil, errors.New("base price cannot be negative")
	}

	event.ID = uuid.NewString()
	event.CreatedAt = time.Now()

	if err := s.DB.CreateEvent(ctx, &event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

// GetEvent returns any event regardless of publication state (admin view).
func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if s.Cache != nil {
		if event, ok := s.Cache.Get(ctx, id); ok {
			return event, nil
		}
	}

	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, event)
	}
	return event, nil
}

// GetPublishedEvent is the public detail view; unpublished events are
// indistinguishable from missing ones.
func (s *Service) GetPublishedEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.IsPublished {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *Service) ListEvents(ctx context.Context, includeUnpublished, upcomingOnly bool) ([]models.Event, error) {
	return s.DB.ListEvents(ctx, includeUnpublished, upcomingOnly)
}

func (s *Service) UpdateEvent(ctx context.Context, event models.Event) error {
	if _, err := s.GetEvent(ctx, event.ID); err != nil {
		return err
	}

	if err := s.DB.UpdateEvent(ctx, &event); err != nil {
		return fmt.Errorf("failed to update event %s: %w", event.ID, err)
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, event.ID)
	}
	return nil
}

func (s *Service) SetPublished(ctx context.Context, id string, published bool) error {
	if err := s.DB.SetPublished(ctx, id, published); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return err
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, id)
	}
	return nil
}

// DeleteEvent removes an event with no orders, cascading its images out of
// the database and the object store.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	hasOrders, err := s.DB.OrdersExistForEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check orders for event %s: %w", id, err)
	}
	if hasOrders {
		return ErrEventHasOrders
	}

	images, err := s.DB.GetImagesByEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list images for event %s: %w", id, err)
	}

	if err := s.DB.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}

	// Rows are gone; stored objects are best-effort from here.
	for _, img := range images {
		if err := s.Store.Remove(ctx, img.ObjectKey); err != nil && s.Logger != nil {
			s.Logger.Warn("STORAGE", fmt.Sprintf("failed to remove object %s: %v", img.ObjectKey, err))
		}
	}

	if s.Cache != nil {
		s.Cache.Invalidate(ctx, id)
	}
	return nil
}

// ---------------- IMAGES ----------------

// PresignImageUpload mints the object key and hands back a short-lived
// upload URL; the client PUTs the bytes directly to the store.
func (s *Service) PresignImageUpload(ctx context.Context, fileName string) (uploadURL, publicURL, objectKey string, err error) {
	objectKey = uuid.NewString() + path.Ext(fileName)
	uploadURL, publicURL, err = s.Store.PresignedUpload(ctx, objectKey)
	if err != nil {
		return "", "", "", err
	}
	return uploadURL, publicURL, objectKey, nil
}

func (s *Service) AttachImage(ctx context.Context, eventID, url, objectKey, altText string) (*models.EventImage, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	image := &models.EventImage{
		ID:        uuid.NewString(),
		EventID:   eventID,
		URL:       url,
		ObjectKey: objectKey,
		AltText:   altText,
		CreatedAt: time.Now(),
	}
	if err := s.DB.AddImage(ctx, image); err != nil {
		return nil, fmt.Errorf("failed to attach image: %w", err)
	}

	if s.Cache != nil {
		s.Cache.Invalidate(ctx, eventID)
	}
	return image, nil
}

func (s *Service) RemoveImage(ctx context.Context, imageID string) error {
	image, err := s.DB.GetImageByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrImageNotFound
		}
		return err
	}

	if err := s.Store.Remove(ctx, image.ObjectKey); err != nil {
		return fmt.Errorf("failed to delete stored object: %w", err)
	}

	if err := s.DB.DeleteImage(ctx, imageID); err != nil {
		return fmt.Errorf("failed to delete image row: %w", err)
	}

	if s.Cache != nil {
		s.Cache.Invalidate(ctx, image.EventID)
	}
	return nil
}
