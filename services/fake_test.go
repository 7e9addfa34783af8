package services

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/Dosada05/design-survey/brackets"
	"github.com/Dosada05/design-survey/models"
	"github.com/Dosada05/design-survey/storage"
	"github.com/google/uuid"
)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu     sync.Mutex
	events []brackets.Event
}

func (f *FakePublisher) BroadcastToRoom(roomID string, message any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev, ok := message.(brackets.Event); ok {
		f.events = append(f.events, ev)
	}
}

func (f *FakePublisher) Count(eventType brackets.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ev := range f.events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

func (f *FakePublisher) Events() []brackets.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.events)
}

// ------------------------
// Fake Survey Repository
// ------------------------

type FakeSurveyRepository struct {
	mu    sync.Mutex
	trace []string

	CreateFunc           func(ctx context.Context, submission *models.SurveySubmission) error
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*models.SurveySubmission, error)
	ListFunc             func(ctx context.Context, limit, offset int) ([]models.SurveySubmission, error)
	CountFunc            func(ctx context.Context) (int, error)
	UpdateArchiveKeyFunc func(ctx context.Context, id uuid.UUID, key *string) error
}

func (f *FakeSurveyRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeSurveyRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *FakeSurveyRepository) Create(ctx context.Context, submission *models.SurveySubmission) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, submission)
	}
	return nil
}

func (f *FakeSurveyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SurveySubmission, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return &models.SurveySubmission{ID: id}, nil
}

func (f *FakeSurveyRepository) List(ctx context.Context, limit, offset int) ([]models.SurveySubmission, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (f *FakeSurveyRepository) Count(ctx context.Context) (int, error) {
	f.record("Count")
	if f.CountFunc != nil {
		return f.CountFunc(ctx)
	}
	return 0, nil
}

func (f *FakeSurveyRepository) UpdateArchiveKey(ctx context.Context, id uuid.UUID, key *string) error {
	f.record("UpdateArchiveKey")
	if f.UpdateArchiveKeyFunc != nil {
		return f.UpdateArchiveKeyFunc(ctx, id, key)
	}
	return nil
}

// ------------------------
// Fake Uploader
// ------------------------

type FakeUploader struct {
	mu      sync.Mutex
	trace   []string
	uploads map[string][]byte

	UploadFunc func(ctx context.Context, key string, contentType string, body []byte) (*storage.UploadResult, error)
	DeleteFunc func(ctx context.Context, key string) error
	BaseURL    string
}

func (f *FakeUploader) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeUploader) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *FakeUploader) Uploaded(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.uploads[key]
	return body, ok
}

func (f *FakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	f.record("Upload")
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if f.UploadFunc != nil {
		return f.UploadFunc(ctx, key, contentType, body)
	}
	f.mu.Lock()
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[key] = body
	f.mu.Unlock()
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *FakeUploader) Delete(ctx context.Context, key string) error {
	f.record("Delete:" + key)
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, key)
	}
	return nil
}

func (f *FakeUploader) GetPublicURL(key string) string {
	if f.BaseURL == "" {
		return ""
	}
	return f.BaseURL + "/" + key
}
