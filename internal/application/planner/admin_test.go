package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplanner/core/internal/domain/entities"
)

func TestAdminRequiresUID(t *testing.T) {
	api := &fakeAPI{}
	svc := NewAdminService(api, testLogger())

	var vErr *entities.ValidationError
	require.ErrorAs(t, svc.Remove(context.Background(), "  "), &vErr)
	assert.Equal(t, "uid", vErr.Field)

	require.ErrorAs(t, svc.ResetCalendar(context.Background(), ""), &vErr)
	assert.Equal(t, "uid", vErr.Field)

	assert.Zero(t, api.calls.Load())
}

func TestAdminForwardsCalls(t *testing.T) {
	api := &fakeAPI{}
	svc := NewAdminService(api, testLogger())
	ctx := context.Background()

	users, err := svc.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, svc.Remove(ctx, " uid-1 "))
	require.NoError(t, svc.ResetCalendar(ctx, "uid-2"))
	assert.Equal(t, int64(3), api.calls.Load())
}
