package models

import (
	"time"

	"github.com/Dosada05/design-survey/brackets"
	"github.com/google/uuid"
)

// Variant выбор между двумя версиями компонента на первом этапе.
type Variant string

const (
	VariantA Variant = "A"
	VariantB Variant = "B"
)

func (v Variant) Valid() bool {
	return v == VariantA || v == VariantB
}

type Round1Response struct {
	ComponentType ComponentType `json:"component_type"`
	Selected      Variant       `json:"selected"`
}

// RankingRow строка полной таблицы рейтинга в анкете.
type RankingRow struct {
	Rank          int     `json:"rank"`
	UIID          int     `json:"ui_id"`
	DesignName    string  `json:"design_name"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	TotalMatches  int     `json:"total_matches"`
	WinPercentage float64 `json:"win_percentage"`
}

type ComponentPreference struct {
	Component ComponentType `json:"component"`
	Preferred Variant       `json:"preferred"`
}

type SurveySummary struct {
	TopUI               int                   `json:"top_ui"`
	TopDesign           string                `json:"top_design"`
	PreferredComponents []ComponentPreference `json:"preferred_components"`
}

// SurveySubmission всё, что сохраняется по одному участнику.
type SurveySubmission struct {
	ID                   uuid.UUID         `json:"id" db:"id"`
	FirstName            string            `json:"first_name" db:"first_name"`
	LastName             string            `json:"last_name" db:"last_name"`
	Timestamp            time.Time         `json:"timestamp" db:"submitted_at"`
	Round1               []Round1Response  `json:"round1" db:"round1_results"`
	MatchHistory         []brackets.Match  `json:"match_history" db:"match_history"`
	TournamentResults    []brackets.Result `json:"tournament_results" db:"tournament_results"`
	FinalRanking         []int             `json:"final_ranking" db:"final_ranking"`
	CompleteRankingTable []RankingRow      `json:"complete_ranking_table" db:"complete_ranking_table"`
	Summary              SurveySummary     `json:"summary" db:"summary"`
	ArchiveKey           *string           `json:"-" db:"archive_key"`
	ArchiveURL           *string           `json:"archive_url,omitempty" db:"-"`
	CreatedAt            time.Time         `json:"created_at" db:"created_at"`
}
