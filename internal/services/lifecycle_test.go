package services

import (
	"testing"
	"time"

	"github.com/fsdevblog/linktrack/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateLifecycle(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	limit := 5

	tests := []struct {
		name string
		url  models.ShortURL
		want LifecycleState
	}{
		{
			name: "active without restrictions",
			url:  models.ShortURL{IsActive: true},
			want: StateActive,
		},
		{
			name: "inactive",
			url:  models.ShortURL{IsActive: false},
			want: StateInactive,
		},
		{
			name: "expired",
			url:  models.ShortURL{IsActive: true, ExpiresAt: &past},
			want: StateExpired,
		},
		{
			name: "expires in future",
			url:  models.ShortURL{IsActive: true, ExpiresAt: &future},
			want: StateActive,
		},
		{
			name: "still alive at the expiry instant",
			url:  models.ShortURL{IsActive: true, ExpiresAt: &now},
			want: StateActive,
		},
		{
			name: "limit reached",
			url:  models.ShortURL{IsActive: true, MaxClicks: &limit, ClickCount: 5},
			want: StateLimitReached,
		},
		{
			name: "limit exceeded",
			url:  models.ShortURL{IsActive: true, MaxClicks: &limit, ClickCount: 7},
			want: StateLimitReached,
		},
		{
			name: "under limit",
			url:  models.ShortURL{IsActive: true, MaxClicks: &limit, ClickCount: 4},
			want: StateActive,
		},
		{
			name: "inactive wins over expired",
			url:  models.ShortURL{IsActive: false, ExpiresAt: &past},
			want: StateInactive,
		},
		{
			name: "expired wins over limit",
			url:  models.ShortURL{IsActive: true, ExpiresAt: &past, MaxClicks: &limit, ClickCount: 9},
			want: StateExpired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateLifecycle(&tt.url, now))
		})
	}
}

func TestValidateLifecycle_MissingRecord(t *testing.T) {
	assert.Equal(t, StateNotFound, ValidateLifecycle(nil, time.Now()))
}
