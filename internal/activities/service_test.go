package activities_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zacy-Sokach/DayFlow/internal/activities"
	"github.com/Zacy-Sokach/DayFlow/internal/api"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

type fakeBackend struct {
	updateErr error
	deleteErr error
	updates   []api.UpdateActivityRequest
	deletes   []api.DeleteActivityRequest
}

func (f *fakeBackend) UpdateActivity(_ context.Context, req api.UpdateActivityRequest) error {
	f.updates = append(f.updates, req)
	return f.updateErr
}

func (f *fakeBackend) DeleteActivity(_ context.Context, req api.DeleteActivityRequest) (map[string]any, error) {
	f.deletes = append(f.deletes, req)
	return map[string]any{"success": f.deleteErr == nil}, f.deleteErr
}

type tokens struct{ ok bool }

func (t tokens) UsableToken(context.Context) (string, bool) {
	if t.ok {
		return "tok", true
	}
	return "", false
}

func newService(t *testing.T, backend *fakeBackend, tok tokens) *activities.Service {
	t.Helper()
	svc, err := activities.NewService(activities.ServiceConfig{
		Backend:  backend,
		Tokens:   tok,
		UserID:   "u1",
		TimeZone: "Asia/Tokyo",
	})
	require.NoError(t, err)
	return svc
}

func TestUpdate(t *testing.T) {
	tests := map[string]struct {
		activity   schedule.Activity
		backendErr error
		expErr     bool
		expErrMsg  string
		expCalls   int
	}{
		"valid activity is normalized and sent": {
			activity: schedule.Activity{ID: "a1", Title: "  Gym ", StartTime: "07:00", EndTime: "08:00", Tags: schedule.StringList{" health ", ""}},
			expCalls: 1,
		},
		"missing id": {
			activity: schedule.Activity{Title: "Gym"},
			expErr:   true,
		},
		"blank title": {
			activity: schedule.Activity{ID: "a1", Title: "  "},
			expErr:   true,
		},
		"server error message is surfaced": {
			activity:   schedule.Activity{ID: "a1", Title: "Gym"},
			backendErr: &api.APIError{StatusCode: 404, Message: "Activity not found"},
			expErr:     true,
			expErrMsg:  "Activity not found",
			expCalls:   1,
		},
		"transport error": {
			activity:   schedule.Activity{ID: "a1", Title: "Gym"},
			backendErr: errors.New("connection reset"),
			expErr:     true,
			expErrMsg:  "connection reset",
			expCalls:   1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			backend := &fakeBackend{updateErr: test.backendErr}
			svc := newService(t, backend, tokens{ok: true})

			err := svc.Update(context.Background(), test.activity)

			if test.expErr {
				require.Error(t, err)
				if test.expErrMsg != "" {
					assert.Contains(t, err.Error(), test.expErrMsg)
				}
			} else {
				require.NoError(t, err)
			}
			require.Len(t, backend.updates, test.expCalls)
			if test.expCalls == 0 {
				return
			}

			req := backend.updates[0]
			assert.Equal(t, req.ID, req.Updates.ID)
			assert.Equal(t, "u1", req.UserID)
			assert.Equal(t, "Asia/Tokyo", req.TimeZone)
			require.NotNil(t, req.AccessToken)
			assert.Equal(t, "tok", *req.AccessToken)
		})
	}
}

func TestUpdateNormalizes(t *testing.T) {
	backend := &fakeBackend{}
	svc := newService(t, backend, tokens{ok: true})

	require.NoError(t, svc.Update(context.Background(), schedule.Activity{
		ID: "a1", Title: " Gym ", StartTime: " 07:00", Days: schedule.StringList{"Monday, Friday"}, Tags: schedule.StringList{" health ", ""},
	}))

	got := backend.updates[0].Updates
	assert.Equal(t, "Gym", got.Title)
	assert.Equal(t, "07:00", got.StartTime)
	assert.Equal(t, schedule.StringList{"Monday", "Friday"}, got.Days)
	assert.Equal(t, schedule.StringList{"health"}, got.Tags)
}

func TestDeleteIsBestEffort(t *testing.T) {
	backend := &fakeBackend{deleteErr: errors.New("offline")}
	svc := newService(t, backend, tokens{ok: false})

	svc.Delete(context.Background(), "a1")

	require.Len(t, backend.deletes, 1)
	assert.Equal(t, schedule.ID("a1"), backend.deletes[0].ID)
	assert.Nil(t, backend.deletes[0].AccessToken)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := activities.NewService(activities.ServiceConfig{Tokens: tokens{}, UserID: "u1"})
	assert.Error(t, err)
	_, err = activities.NewService(activities.ServiceConfig{Backend: &fakeBackend{}, UserID: "u1"})
	assert.Error(t, err)
	_, err = activities.NewService(activities.ServiceConfig{Backend: &fakeBackend{}, Tokens: tokens{}})
	assert.Error(t, err)
}
