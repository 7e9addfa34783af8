package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader объектное хранилище для архива анкет.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// SubmissionKey ключ архивного объекта анкеты, например
// surveys/2025/03/09/<id>.json.
func SubmissionKey(id uuid.UUID, submittedAt time.Time) string {
	t := submittedAt.UTC()
	return fmt.Sprintf("surveys/%04d/%02d/%02d/%s.json", t.Year(), int(t.Month()), t.Day(), id)
}
