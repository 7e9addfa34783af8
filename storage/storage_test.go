package storage

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionKey(t *testing.T) {
	id := uuid.MustParse("7f1c2a64-2b1e-4d7a-9a51-0e8f3f6c1b20")
	loc := time.FixedZone("UTC+5", 5*60*60)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"utc", time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC), "surveys/2025/03/09/7f1c2a64-2b1e-4d7a-9a51-0e8f3f6c1b20.json"},
		{"converted to utc", time.Date(2025, 1, 1, 2, 0, 0, 0, loc), "surveys/2024/12/31/7f1c2a64-2b1e-4d7a-9a51-0e8f3f6c1b20.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubmissionKey(id, tt.at))
		})
	}
}

func TestPublicURL(t *testing.T) {
	base, err := url.Parse("https://cdn.example.com/archive/")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/archive/surveys/a.json", PublicURL(base, "surveys/a.json"))
	assert.Equal(t, "https://cdn.example.com/archive/surveys/a.json", PublicURL(base, "/surveys/a.json"))
	assert.Empty(t, PublicURL(nil, "surveys/a.json"))
	assert.Empty(t, PublicURL(base, ""))
}

func TestR2ConfigEnabled(t *testing.T) {
	assert.False(t, CloudflareR2UploaderConfig{}.Enabled())
	assert.True(t, CloudflareR2UploaderConfig{AccountID: "acc", BucketName: "surveys"}.Enabled())
}
