package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplanner/core/internal/domain/entities"
)

func TestCreateLinkRequiresCourses(t *testing.T) {
	api := &fakeAPI{}
	svc := NewShareService(api, testLogger())

	for _, courses := range [][]string{nil, {}, {"", "   "}} {
		_, err := svc.CreateLink(context.Background(), courses)

		var vErr *entities.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "courses", vErr.Field)
	}
	assert.Zero(t, api.calls.Load())
}

func TestCreateLinkTrimsAndForwards(t *testing.T) {
	var got []string
	api := &fakeAPI{
		createShareFn: func(ctx context.Context, courseNames []string) (string, error) {
			got = courseNames
			return "tok-abc123", nil
		},
	}
	svc := NewShareService(api, testLogger())

	token, err := svc.CreateLink(context.Background(), []string{" Math ", "", "English"})

	require.NoError(t, err)
	assert.Equal(t, "tok-abc123", token)
	assert.Equal(t, []string{"Math", "English"}, got)
}

func TestResolveRejectsEmptyToken(t *testing.T) {
	api := &fakeAPI{}
	svc := NewShareService(api, testLogger())

	_, err := svc.Resolve(context.Background(), "   ")

	var vErr *entities.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "token", vErr.Field)
	assert.Zero(t, api.calls.Load())
}

func TestResolveFallsBackOwnerName(t *testing.T) {
	schedule := entities.SharedSchedule{
		Events: []entities.ShareEvent{
			{ID: 1, Title: "Essay", Course: "English", Date: entities.Date{Year: 2025, Month: time.April, Day: 2}},
		},
	}
	api := &fakeAPI{
		resolveSharedFn: func(ctx context.Context, token string) (entities.SharedSchedule, error) {
			return schedule, nil
		},
	}
	svc := NewShareService(api, testLogger())

	got, err := svc.Resolve(context.Background(), "tok-abc123")

	require.NoError(t, err)
	assert.Equal(t, "User", got.OwnerName)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "Essay", got.Events[0].Title)
}

func TestResolvePropagatesRemoteError(t *testing.T) {
	api := &fakeAPI{
		resolveSharedFn: func(ctx context.Context, token string) (entities.SharedSchedule, error) {
			return entities.SharedSchedule{}, &entities.RemoteError{Op: "resolve_shared", Status: 404}
		},
	}
	svc := NewShareService(api, testLogger())

	_, err := svc.Resolve(context.Background(), "tok-expired")

	var rErr *entities.RemoteError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, 404, rErr.Status)
}
