package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestURL_Resolvable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		url  URL
		want bool
	}{
		{
			name: "active without expiry",
			url:  URL{IsActive: true},
			want: true,
		},
		{
			name: "active with future expiry",
			url:  URL{IsActive: true, ExpiresAt: &future},
			want: true,
		},
		{
			name: "active with past expiry",
			url:  URL{IsActive: true, ExpiresAt: &past},
			want: false,
		},
		{
			name: "expiry equal to now",
			url:  URL{IsActive: true, ExpiresAt: &now},
			want: false,
		},
		{
			name: "inactive without expiry",
			url:  URL{IsActive: false},
			want: false,
		},
		{
			name: "inactive with future expiry",
			url:  URL{IsActive: false, ExpiresAt: &future},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.url.Resolvable(now))
		})
	}
}
