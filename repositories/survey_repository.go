package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/design-survey/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrSurveyNotFound = errors.New("survey submission not found")
	ErrSurveyConflict = errors.New("survey submission already exists")
)

type SurveyRepository interface {
	Create(ctx context.Context, submission *models.SurveySubmission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SurveySubmission, error)
	List(ctx context.Context, limit, offset int) ([]models.SurveySubmission, error)
	Count(ctx context.Context) (int, error)
	UpdateArchiveKey(ctx context.Context, id uuid.UUID, key *string) error
}

type postgresSurveyRepository struct {
	db SQLExecutor
}

func NewPostgresSurveyRepository(db SQLExecutor) SurveyRepository {
	return &postgresSurveyRepository{db: db}
}

const surveyColumns = `id, first_name, last_name, submitted_at, round1_results, match_history,
	tournament_results, final_ranking, complete_ranking_table, summary, archive_key, created_at`

func (r *postgresSurveyRepository) Create(ctx context.Context, s *models.SurveySubmission) error {
	query := `
		INSERT INTO survey_results (
			id, first_name, last_name, submitted_at, round1_results, match_history,
			tournament_results, final_ranking, complete_ranking_table, summary, archive_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	docs, err := marshalSurveyDocuments(s)
	if err != nil {
		return err
	}

	finalRanking := make([]int64, len(s.FinalRanking))
	for i, id := range s.FinalRanking {
		finalRanking[i] = int64(id)
	}

	err = r.db.QueryRowContext(ctx, query,
		s.ID, s.FirstName, s.LastName, s.Timestamp,
		docs.round1, docs.matchHistory, docs.tournamentResults,
		pq.Array(finalRanking), docs.rankingTable, docs.summary,
		s.ArchiveKey,
	).Scan(&s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrSurveyConflict, s.ID)
		}
		return fmt.Errorf("failed to insert survey submission %s: %w", s.ID, err)
	}
	return nil
}

func (r *postgresSurveyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SurveySubmission, error) {
	query := `SELECT ` + surveyColumns + ` FROM survey_results WHERE id = $1`

	s, err := scanSurvey(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey submission %s: %w", id, err)
	}
	return s, nil
}

func (r *postgresSurveyRepository) List(ctx context.Context, limit, offset int) ([]models.SurveySubmission, error) {
	query := `SELECT ` + surveyColumns + `
		FROM survey_results
		ORDER BY submitted_at DESC, id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list survey submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]models.SurveySubmission, 0, limit)
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan survey submission: %w", err)
		}
		submissions = append(submissions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate survey submissions: %w", err)
	}
	return submissions, nil
}

func (r *postgresSurveyRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM survey_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count survey submissions: %w", err)
	}
	return n, nil
}

func (r *postgresSurveyRepository) UpdateArchiveKey(ctx context.Context, id uuid.UUID, key *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE survey_results SET archive_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update archive key for %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrSurveyNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row rowScanner) (*models.SurveySubmission, error) {
	var (
		s            models.SurveySubmission
		round1       []byte
		matchHistory []byte
		results      []byte
		rankingTable []byte
		summary      []byte
		finalRanking pq.Int64Array
		archiveKey   sql.NullString
	)
	err := row.Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.Timestamp,
		&round1, &matchHistory, &results, &finalRanking,
		&rankingTable, &summary, &archiveKey, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, doc := range []struct {
		name string
		raw  []byte
		dest any
	}{
		{"round1_results", round1, &s.Round1},
		{"match_history", matchHistory, &s.MatchHistory},
		{"tournament_results", results, &s.TournamentResults},
		{"complete_ranking_table", rankingTable, &s.CompleteRankingTable},
		{"summary", summary, &s.Summary},
	} {
		if len(doc.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(doc.raw, doc.dest); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", doc.name, err)
		}
	}

	s.FinalRanking = make([]int, len(finalRanking))
	for i, id := range finalRanking {
		s.FinalRanking[i] = int(id)
	}
	if archiveKey.Valid {
		s.ArchiveKey = &archiveKey.String
	}
	s.Timestamp = s.Timestamp.UTC()
	return &s, nil
}

type surveyDocuments struct {
	round1            []byte
	matchHistory      []byte
	tournamentResults []byte
	rankingTable      []byte
	summary           []byte
}

func marshalSurveyDocuments(s *models.SurveySubmission) (surveyDocuments, error) {
	var (
		docs surveyDocuments
		err  error
	)
	if docs.round1, err = json.Marshal(s.Round1); err != nil {
		return docs, fmt.Errorf("failed to encode round1_results: %w", err)
	}
	if docs.matchHistory, err = json.Marshal(s.MatchHistory); err != nil {
		return docs, fmt.Errorf("failed to encode match_history: %w", err)
	}
	if docs.tournamentResults, err = json.Marshal(s.TournamentResults); err != nil {
		return docs, fmt.Errorf("failed to encode tournament_results: %w", err)
	}
	if docs.rankingTable, err = json.Marshal(s.CompleteRankingTable); err != nil {
		return docs, fmt.Errorf("failed to encode complete_ranking_table: %w", err)
	}
	if docs.summary, err = json.Marshal(s.Summary); err != nil {
		return docs, fmt.Errorf("failed to encode summary: %w", err)
	}
	return docs, nil
}
