package handlers_test

import (
	"context"
	"slices"
	"sync"

	"github.com/Dosada05/design-survey/models"
	"github.com/Dosada05/design-survey/repositories"
	"github.com/google/uuid"
)

// memorySurveyRepository keeps submissions in memory, newest first.
type memorySurveyRepository struct {
	mu   sync.Mutex
	rows []models.SurveySubmission

	CreateErr error
}

func (m *memorySurveyRepository) Create(ctx context.Context, s *models.SurveySubmission) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = slices.Insert(m.rows, 0, *s)
	return nil
}

func (m *memorySurveyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SurveySubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repositories.ErrSurveyNotFound
}

func (m *memorySurveyRepository) List(ctx context.Context, limit, offset int) ([]models.SurveySubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset >= len(m.rows) {
		return nil, nil
	}
	end := min(offset+limit, len(m.rows))
	return slices.Clone(m.rows[offset:end]), nil
}

func (m *memorySurveyRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *memorySurveyRepository) UpdateArchiveKey(ctx context.Context, id uuid.UUID, key *string) error {
	return nil
}

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(ctx context.Context) error {
	return p.err
}
