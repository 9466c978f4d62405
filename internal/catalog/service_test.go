package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"ms-booking/internal/catalog"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
)

type MockCatalogDB struct {
	events      map[string]*models.Event
	images      map[string]*models.EventImage
	eventOrders map[string]bool
}

func NewMockCatalogDB() *MockCatalogDB {
	return &MockCatalogDB{
		events:      make(map[string]*models.Event),
		images:      make(map[string]*models.EventImage),
		eventOrders: make(map[string]bool),
	}
}

func (m *MockCatalogDB) CreateEvent(_ context.Context, event *models.Event) error {
	stored := *event
	m.events[event.ID] = &stored
	return nil
}

func (m *MockCatalogDB) GetEventByID(_ context.Context, id string) (*models.Event, error) {
	event, exists := m.events[id]
	if !exists {
		return nil, sql.ErrNoRows
	}
	copied := *event
	return &copied, nil
}

func (m *MockCatalogDB) ListEvents(_ context.Context, includeUnpublished, _ bool) ([]models.Event, error) {
	var result []models.Event
	for _, event := range m.events {
		if includeUnpublished || event.IsPublished {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (m *MockCatalogDB) UpdateEvent(_ context.Context, event *models.Event) error {
	if _, exists := m.events[event.ID]; !exists {
		return sql.ErrNoRows
	}
	stored := *event
	m.events[event.ID] = &stored
	return nil
}

func (m *MockCatalogDB) SetPublished(_ context.Context, id string, published bool) error {
	event, exists := m.events[id]
	if !exists {
		return sql.ErrNoRows
	}
	event.IsPublished = published
	return nil
}

func (m *MockCatalogDB) DeleteEvent(_ context.Context, id string) error {
	delete(m.events, id)
	for imageID, image := range m.images {
		if image.EventID == id {
			delete(m.images, imageID)
		}
	}
	return nil
}

func (m *MockCatalogDB) OrdersExistForEvent(_ context.Context, eventID string) (bool, error) {
	return m.eventOrders[eventID], nil
}

func (m *MockCatalogDB) AddImage(_ context.Context, image *models.EventImage) error {
	stored := *image
	m.images[image.ID] = &stored
	return nil
}

func (m *MockCatalogDB) GetImageByID(_ context.Context, id string) (*models.EventImage, error) {
	image, exists := m.images[id]
	if !exists {
		return nil, sql.ErrNoRows
	}
	copied := *image
	return &copied, nil
}

func (m *MockCatalogDB) GetImagesByEvent(_ context.Context, eventID string) ([]models.EventImage, error) {
	var result []models.EventImage
	for _, image := range m.images {
		if image.EventID == eventID {
			result = append(result, *image)
		}
	}
	return result, nil
}

func (m *MockCatalogDB) DeleteImage(_ context.Context, id string) error {
	delete(m.images, id)
	return nil
}

type MockObjectStore struct {
	removed []string
}

func (m *MockObjectStore) PresignedUpload(_ context.Context, objectKey string) (string, string, error) {
	return "https://upload.example/" + objectKey, "https://cdn.example/" + objectKey, nil
}

func (m *MockObjectStore) Remove(_ context.Context, objectKey string) error {
	m.removed = append(m.removed, objectKey)
	return nil
}

func newTestService() (*catalog.Service, *MockCatalogDB, *MockObjectStore) {
	db := NewMockCatalogDB()
	store := &MockObjectStore{}
	return catalog.NewService(db, store, nil, logger.NewLogger()), db, store
}

func TestCreateEventValidation(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.CreateEvent(context.Background(), models.Event{}); err == nil {
		t.Error("Expected error for missing title")
	}
	if _, err := svc.CreateEvent(context.Background(), models.Event{Title: "X", BasePriceMinor: -1}); err == nil {
		t.Error("Expected error for negative price")
	}

	created, err := svc.CreateEvent(context.Background(), models.Event{Title: "Show", BasePriceMinor: 10000})
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	if created.ID == "" {
		t.Error("Created event should get an id")
	}
}

func TestGetPublishedEventHidesDrafts(t *testing.T) {
	svc, db, _ := newTestService()
	db.events["draft"] = &models.Event{ID: "draft", Title: "Draft", IsPublished: false}
	db.events["live"] = &models.Event{ID: "live", Title: "Live", IsPublished: true}

	if _, err := svc.GetPublishedEvent(context.Background(), "draft"); !errors.Is(err, catalog.ErrEventNotFound) {
		t.Errorf("Draft should look missing, got %v", err)
	}
	if _, err := svc.GetPublishedEvent(context.Background(), "live"); err != nil {
		t.Errorf("Published event should be visible, got %v", err)
	}
	if _, err := svc.GetPublishedEvent(context.Background(), "missing"); !errors.Is(err, catalog.ErrEventNotFound) {
		t.Errorf("Missing event should be ErrEventNotFound, got %v", err)
	}
}

func TestDeleteEventGuardsExistingOrders(t *testing.T) {
	svc, db, _ := newTestService()
	db.events["event1"] = &models.Event{ID: "event1", Title: "Booked"}
	db.eventOrders["event1"] = true

	err := svc.DeleteEvent(context.Background(), "event1")
	if !errors.Is(err, catalog.ErrEventHasOrders) {
		t.Errorf("Expected ErrEventHasOrders, got %v", err)
	}
	if _, exists := db.events["event1"]; !exists {
		t.Error("Event with orders must not be deleted")
	}
}

func TestDeleteEventCascadesImages(t *testing.T) {
	svc, db, store := newTestService()
	db.events["event1"] = &models.Event{ID: "event1", Title: "Gone"}
	db.images["img1"] = &models.EventImage{ID: "img1", EventID: "event1", ObjectKey: "key1.jpg"}
	db.images["img2"] = &models.EventImage{ID: "img2", EventID: "event1", ObjectKey: "key2.jpg"}

	if err := svc.DeleteEvent(context.Background(), "event1"); err != nil {
		t.Fatalf("Failed to delete event: %v", err)
	}

	if len(db.events) != 0 || len(db.images) != 0 {
		t.Error("Event and image rows should be deleted")
	}
	if len(store.removed) != 2 {
		t.Errorf("Expected 2 removed objects, got %d", len(store.removed))
	}
}

func TestPresignImageUploadKeepsExtension(t *testing.T) {
	svc, _, _ := newTestService()

	uploadURL, publicURL, objectKey, err := svc.PresignImageUpload(context.Background(), "poster.png")
	if err != nil {
		t.Fatalf("Failed to presign upload: %v", err)
	}
	if !strings.HasSuffix(objectKey, ".png") {
		t.Errorf("Object key should keep the extension, got %s", objectKey)
	}
	if !strings.Contains(uploadURL, objectKey) || !strings.Contains(publicURL, objectKey) {
		t.Error("URLs should reference the object key")
	}
}

func TestRemoveImageDeletesObjectAndRow(t *testing.T) {
	svc, db, store := newTestService()
	db.events["event1"] = &models.Event{ID: "event1", Title: "Show"}
	db.images["img1"] = &models.EventImage{ID: "img1", EventID: "event1", ObjectKey: "key1.jpg"}

	if err := svc.RemoveImage(context.Background(), "img1"); err != nil {
		t.Fatalf("Failed to remove image: %v", err)
	}
	if len(store.removed) != 1 || store.removed[0] != "key1.jpg" {
		t.Errorf("Expected object key1.jpg removed, got %v", store.removed)
	}
	if len(db.images) != 0 {
		t.Error("Image row should be deleted")
	}

	if err := svc.RemoveImage(context.Background(), "img1"); !errors.Is(err, catalog.ErrImageNotFound) {
		t.Errorf("Expected ErrImageNotFound, got %v", err)
	}
}
