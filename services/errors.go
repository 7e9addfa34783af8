package services

import "errors"

// Общие ошибки сервисного слоя, используемые при маппинге в HTTP-ответы.
var (
	// Сессии
	ErrSessionNotFound   = errors.New("survey session not found")
	ErrSurveyNotFinished = errors.New("tournament is not finished yet")

	// Валидация анкеты
	ErrValidationFailed = errors.New("validation failed")
	ErrNameRequired     = errors.New("first and last name are required")
	ErrInvalidRound1    = errors.New("invalid first-phase selections")

	// Хранилище анкет
	ErrSubmissionNotFound = errors.New("survey submission not found")
	ErrSubmissionFailed   = errors.New("failed to store survey submission")

	// Анкета по этой сессии уже отправляется
	ErrSubmissionInProgress = errors.New("survey submission already in progress")

	// Аутентификация
	ErrAuthInvalidCredentials = errors.New("invalid admin credentials")
)
