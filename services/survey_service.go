package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/design-survey/brackets"
	"github.com/Dosada05/design-survey/models"
	"github.com/Dosada05/design-survey/repositories"
	"github.com/Dosada05/design-survey/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	archiveTimeout   = 15 * time.Second
)

type SubmitSurveyInput struct {
	FirstName string                  `json:"first_name"`
	LastName  string                  `json:"last_name"`
	SessionID string                  `json:"session_id"`
	Round1    []models.Round1Response `json:"round1"`
}

type SurveyPage struct {
	Items  []models.SurveySubmission `json:"items"`
	Total  int                       `json:"total"`
	Limit  int                       `json:"limit"`
	Offset int                       `json:"offset"`
}

type SurveySubmittedPayload struct {
	SessionID    string    `json:"session_id"`
	SubmissionID uuid.UUID `json:"submission_id"`
}

type SurveyService interface {
	Submit(ctx context.Context, input SubmitSurveyInput) (*models.SurveySubmission, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.SurveySubmission, error)
	List(ctx context.Context, limit, offset int) (*SurveyPage, error)
}

type surveyService struct {
	surveyRepo repositories.SurveyRepository
	sessions   SessionService
	uploader   storage.FileUploader
	publisher  Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewSurveyService собирает сервис анкет. uploader может быть nil, тогда
// анкеты сохраняются без архивной копии.
func NewSurveyService(
	surveyRepo repositories.SurveyRepository,
	sessions SessionService,
	uploader storage.FileUploader,
	publisher Publisher,
	logger *slog.Logger,
) SurveyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &surveyService{
		surveyRepo: surveyRepo,
		sessions:   sessions,
		uploader:   uploader,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *surveyService) Submit(ctx context.Context, input SubmitSurveyInput) (*models.SurveySubmission, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrNameRequired
	}
	if err := validateRound1(input.Round1); err != nil {
		return nil, err
	}

	outcome, err := s.sessions.Claim(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	submission := buildSubmission(uuid.New(), firstName, lastName, input.Round1, outcome, s.now())

	if err := s.persist(ctx, submission); err != nil {
		s.sessions.Release(ctx, input.SessionID)
		return nil, err
	}

	if err := s.sessions.Discard(ctx, input.SessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		s.logger.Warn("failed to discard submitted session",
			slog.String("session_id", input.SessionID),
			slog.Any("error", err))
	}

	if s.publisher != nil {
		room := brackets.SessionRoom(input.SessionID)
		s.publisher.BroadcastToRoom(room, brackets.Event{
			Type:    brackets.EventSurveySubmitted,
			Payload: SurveySubmittedPayload{SessionID: input.SessionID, SubmissionID: submission.ID},
			RoomID:  room,
		})
	}

	s.logger.Info("survey submitted",
		slog.String("submission_id", submission.ID.String()),
		slog.String("session_id", input.SessionID),
		slog.Int("top_ui", submission.Summary.TopUI),
		slog.Bool("archived", submission.ArchiveKey != nil))

	return submission, nil
}

// persist сохраняет анкету в БД и параллельно архивирует её, если есть
// uploader. Успех определяется только записью в БД.
func (s *surveyService) persist(ctx context.Context, submission *models.SurveySubmission) error {
	var body []byte
	if s.uploader != nil {
		key := storage.SubmissionKey(submission.ID, submission.Timestamp)
		submission.ArchiveKey = &key

		var err error
		body, err = json.Marshal(submission)
		if err != nil {
			return fmt.Errorf("%w: encode archive: %w", ErrSubmissionFailed, err)
		}
	}

	var (
		archiveErr error
		archived   *storage.UploadResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.surveyRepo.Create(gctx, submission)
	})
	if s.uploader != nil {
		g.Go(func() error {
			archived, archiveErr = s.uploader.Upload(gctx, *submission.ArchiveKey, "application/json", bytes.NewReader(body))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if archived != nil {
			s.removeArchive(archived.Key)
		}
		return fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	if s.uploader == nil {
		return nil
	}
	if archiveErr != nil {
		s.logger.Warn("survey archive failed, keeping database copy only",
			slog.String("submission_id", submission.ID.String()),
			slog.Any("error", archiveErr))
		submission.ArchiveKey = nil
		if err := s.surveyRepo.UpdateArchiveKey(ctx, submission.ID, nil); err != nil {
			s.logger.Error("failed to clear archive key",
				slog.String("submission_id", submission.ID.String()),
				slog.Any("error", err))
		}
		return nil
	}
	if archived.Location != "" {
		location := archived.Location
		submission.ArchiveURL = &location
	}
	return nil
}

func (s *surveyService) removeArchive(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.Error("failed to remove orphaned survey archive",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

func (s *surveyService) GetByID(ctx context.Context, id uuid.UUID) (*models.SurveySubmission, error) {
	submission, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSurveyNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get survey submission %s: %w", id, err)
	}
	s.populateArchiveURL(submission)
	return submission, nil
}

func (s *surveyService) List(ctx context.Context, limit, offset int) (*SurveyPage, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)

	page := &SurveyPage{Limit: limit, Offset: offset}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.surveyRepo.List(gctx, limit, offset)
		page.Items = items
		return err
	})
	g.Go(func() error {
		total, err := s.surveyRepo.Count(gctx)
		page.Total = total
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list survey submissions: %w", err)
	}

	if page.Items == nil {
		page.Items = []models.SurveySubmission{}
	}
	for i := range page.Items {
		s.populateArchiveURL(&page.Items[i])
	}
	return page, nil
}

func (s *surveyService) populateArchiveURL(submission *models.SurveySubmission) {
	if s.uploader == nil || submission.ArchiveKey == nil {
		return
	}
	if u := s.uploader.GetPublicURL(*submission.ArchiveKey); u != "" {
		submission.ArchiveURL = &u
	}
}

func validateRound1(responses []models.Round1Response) error {
	seen := make(map[models.ComponentType]struct{}, len(responses))
	for _, r := range responses {
		if !r.ComponentType.Valid() {
			return fmt.Errorf("%w: unknown component %q", ErrInvalidRound1, r.ComponentType)
		}
		if !r.Selected.Valid() {
			return fmt.Errorf("%w: component %s has selection %q", ErrInvalidRound1, r.ComponentType, r.Selected)
		}
		if _, dup := seen[r.ComponentType]; dup {
			return fmt.Errorf("%w: component %s answered twice", ErrInvalidRound1, r.ComponentType)
		}
		seen[r.ComponentType] = struct{}{}
	}
	return nil
}

func buildSubmission(
	id uuid.UUID,
	firstName, lastName string,
	round1 []models.Round1Response,
	outcome *SessionOutcome,
	now time.Time,
) *models.SurveySubmission {
	results := outcome.Results
	finalRanking := make([]int, 0, len(results))
	table := make([]models.RankingRow, 0, len(results))
	for _, r := range results {
		uiID := int(r.Candidate)
		finalRanking = append(finalRanking, uiID)
		table = append(table, models.RankingRow{
			Rank:          r.FinalRank,
			UIID:          uiID,
			DesignName:    models.DesignName(uiID),
			Wins:          r.Wins,
			Losses:        r.Losses,
			TotalMatches:  r.TotalMatches,
			WinPercentage: r.WinPercentage,
		})
	}

	preferred := make([]models.ComponentPreference, 0, len(round1))
	for _, r := range round1 {
		preferred = append(preferred, models.ComponentPreference{
			Component: r.ComponentType,
			Preferred: r.Selected,
		})
	}

	summary := models.SurveySummary{PreferredComponents: preferred}
	if len(results) > 0 {
		summary.TopUI = int(results[0].Candidate)
		summary.TopDesign = models.DesignName(summary.TopUI)
	}

	history := outcome.History
	if history == nil {
		history = []brackets.Match{}
	}
	if round1 == nil {
		round1 = []models.Round1Response{}
	}

	return &models.SurveySubmission{
		ID:                   id,
		FirstName:            firstName,
		LastName:             lastName,
		Timestamp:            now.UTC().Truncate(time.Millisecond),
		Round1:               round1,
		MatchHistory:         history,
		TournamentResults:    results,
		FinalRanking:         finalRanking,
		CompleteRankingTable: table,
		Summary:              summary,
	}
}
