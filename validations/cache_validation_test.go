package validations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainCache "github.com/crossforge/xcodemcp/domains/cache"
	pkgError "github.com/crossforge/xcodemcp/pkg/error"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestValidateSetCacheConfig(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		request domainCache.SetConfigRequest
		wantErr bool
	}{
		{
			name:    "milliseconds only",
			request: domainCache.SetConfigRequest{CacheType: "simulator", DurationMs: int64Ptr(5000)},
		},
		{
			name:    "minutes only",
			request: domainCache.SetConfigRequest{CacheType: "project", DurationMinutes: int64Ptr(2)},
		},
		{
			name:    "hours only",
			request: domainCache.SetConfigRequest{CacheType: "all", DurationHours: int64Ptr(1)},
		},
		{
			name:    "no duration supplied",
			request: domainCache.SetConfigRequest{CacheType: "simulator"},
			wantErr: true,
		},
		{
			name: "two durations supplied",
			request: domainCache.SetConfigRequest{
				CacheType:       "simulator",
				DurationMs:      int64Ptr(5000),
				DurationMinutes: int64Ptr(1),
			},
			wantErr: true,
		},
		{
			name:    "missing cache type",
			request: domainCache.SetConfigRequest{DurationMs: int64Ptr(5000)},
			wantErr: true,
		},
		{
			name:    "negative duration",
			request: domainCache.SetConfigRequest{CacheType: "simulator", DurationMs: int64Ptr(-1)},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSetCacheConfig(ctx, tc.request)
			if tc.wantErr {
				assert.Error(t, err)
				assert.IsType(t, pkgError.ValidationError(""), err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
