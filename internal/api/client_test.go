package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zacy-Sokach/DayFlow/internal/api"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
	"github.com/Zacy-Sokach/DayFlow/internal/utils"
)

func newServer(t *testing.T, path string, handler func(t *testing.T, body map[string]any, w http.ResponseWriter)) (*api.Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(api.HeaderRequestID))

		body := map[string]any{}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		handler(t, body, w)
	}))
	t.Cleanup(srv.Close)

	retry := &utils.RetryConfig{
		MaxRetries:           2,
		InitialDelay:         time.Millisecond,
		MaxDelay:             time.Millisecond,
		BackoffMultiplier:    1,
		RetryableStatusCodes: []int{http.StatusServiceUnavailable},
	}
	return api.NewClient(srv.URL+"/", api.WithHTTPClient(srv.Client()), api.WithRetryConfig(retry)), &calls
}

func session() api.Session {
	return api.Session{UserID: "u1", TimeZone: "Europe/Madrid"}.WithToken("tok", true)
}

func TestConverse(t *testing.T) {
	c, _ := newServer(t, "/api/chat/conversation", func(t *testing.T, body map[string]any, w http.ResponseWriter) {
		assert.Equal(t, "add lunch at noon", body["message"])
		assert.Equal(t, "u1", body["userId"])
		assert.Equal(t, "tok", body["accessToken"])
		assert.Equal(t, "Europe/Madrid", body["timeZone"])

		_, _ = io.WriteString(w, `{
			"message": "How about lunch at 12:00?",
			"type": "proposal",
			"activities": [{"id": 7, "title": "Lunch", "startTime": "12:00", "endTime": "13:00", "days": "Monday, Tuesday"}],
			"actions": [{"type": "createSheet", "title": "Meals", "columns": ["day", "meal"]}]
		}`)
	})

	resp, err := c.Converse(context.Background(), api.ConversationRequest{Message: "add lunch at noon", Session: session()})
	require.NoError(t, err)

	assert.True(t, resp.IsProposal())
	assert.Equal(t, "How about lunch at 12:00?", resp.Message)
	require.Len(t, resp.Activities, 1)
	assert.Equal(t, schedule.ID("7"), resp.Activities[0].ID)
	assert.Equal(t, schedule.StringList{"Monday", "Tuesday"}, resp.Activities[0].Days)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "Google Sheet", resp.Actions[0].Kind())
	assert.Equal(t, "Meals", resp.Actions[0].Title)
}

func TestConverseWithoutToken(t *testing.T) {
	c, _ := newServer(t, "/api/chat/conversation", func(t *testing.T, body map[string]any, w http.ResponseWriter) {
		v, ok := body["accessToken"]
		assert.True(t, ok)
		assert.Nil(t, v)
		_, _ = io.WriteString(w, `{"message": "hi", "type": "chat"}`)
	})

	s := api.Session{UserID: "u1", TimeZone: "UTC"}.WithToken("", false)
	resp, err := c.Converse(context.Background(), api.ConversationRequest{Message: "hello", Session: s})
	require.NoError(t, err)
	assert.False(t, resp.IsProposal())
}

func TestConfirm(t *testing.T) {
	tests := map[string]struct {
		req     func() api.ConfirmRequest
		expBody func(t *testing.T, body map[string]any)
	}{
		"empty lists are sent as arrays": {
			req: func() api.ConfirmRequest { return api.ConfirmRequest{Session: session()} },
			expBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, []any{}, body["activities"])
				assert.Equal(t, []any{}, body["actions"])
			},
		},
		"actions keep unknown fields": {
			req: func() api.ConfirmRequest {
				var a api.Action
				require.NoError(t, json.Unmarshal([]byte(`{"type":"createDoc","title":"Plan","content":"# Week"}`), &a))
				return api.ConfirmRequest{Actions: []api.Action{a}, Session: session()}
			},
			expBody: func(t *testing.T, body map[string]any) {
				actions := body["actions"].([]any)
				require.Len(t, actions, 1)
				assert.Equal(t, map[string]any{"type": "createDoc", "title": "Plan", "content": "# Week"}, actions[0])
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := newServer(t, "/api/chat/confirm", func(t *testing.T, body map[string]any, w http.ResponseWriter) {
				test.expBody(t, body)
				_, _ = io.WriteString(w, `{"success": true, "message": "Added 1 activity"}`)
			})

			resp, err := c.Confirm(context.Background(), test.req())
			require.NoError(t, err)
			assert.True(t, resp.Success)
			assert.Equal(t, "Added 1 activity", resp.Message)
		})
	}
}

func TestClearConversation(t *testing.T) {
	c, calls := newServer(t, "/api/chat/clear", func(t *testing.T, body map[string]any, w http.ResponseWriter) {
		assert.Equal(t, map[string]any{"userId": "u1"}, body)
	})

	require.NoError(t, c.ClearConversation(context.Background(), "u1"))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestUpdateActivityError(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
		expMsg string
	}{
		"server error string": {status: http.StatusBadRequest, body: `{"error": "Activity not found"}`, expMsg: "Activity not found"},
		"plain text body":     {status: http.StatusInternalServerError, body: "boom\n", expMsg: "boom"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := newServer(t, "/api/activities/update", func(t *testing.T, body map[string]any, w http.ResponseWriter) {
				assert.Equal(t, "a1", body["id"])
				updates := body["updates"].(map[string]any)
				assert.Equal(t, "Gym", updates["title"])
				w.WriteHeader(test.status)
				_, _ = io.WriteString(w, test.body)
			})

			err := c.UpdateActivity(context.Background(), api.UpdateActivityRequest{
				ID:      "a1",
				Updates: schedule.Activity{ID: "a1", Title: "Gym", StartTime: "07:00", EndTime: "08:00"},
				Session: session(),
			})

			var apiErr *api.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, test.status, apiErr.StatusCode)
			assert.Equal(t, test.expMsg, apiErr.Message)
		})
	}
}

func TestDeleteActivity(t *testing.T) {
	c, _ := newServer(t, "/api/activities/delete", func(t *testing.T, body map[string]any, w http.ResponseWriter) {
		assert.Equal(t, "a1", body["id"])
		_, _ = io.WriteString(w, `{"success": true}`)
	})

	result, err := c.DeleteActivity(context.Background(), api.DeleteActivityRequest{ID: "a1", Session: session()})
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
}

func TestMalformedResponse(t *testing.T) {
	c, _ := newServer(t, "/api/chat/conversation", func(t *testing.T, body map[string]any, w http.ResponseWriter) {
		_, _ = io.WriteString(w, `{"message": `)
	})

	_, err := c.Converse(context.Background(), api.ConversationRequest{Message: "x", Session: session()})
	assert.Error(t, err)
}

func TestPredictFutureRetries(t *testing.T) {
	var attempts int32
	c, _ := newServer(t, "/api/predict-future", func(t *testing.T, body map[string]any, w http.ResponseWriter) {
		assert.Equal(t, "u1", body["userId"])
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"futures": [{"title": "Baseline", "timeHorizon": "6 months", "summary": ["steady"], "details": "**More** sleep"}]}`)
	})

	futures, err := c.PredictFuture(context.Background(), session())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, []api.Future{{Title: "Baseline", TimeHorizon: "6 months", Summary: []string{"steady"}, Details: "**More** sleep"}}, futures)
}

func TestCoreCallsDoNotRetry(t *testing.T) {
	c, calls := newServer(t, "/api/chat/conversation", func(t *testing.T, body map[string]any, w http.ResponseWriter) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Converse(context.Background(), api.ConversationRequest{Message: "x", Session: session()})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestActionKind(t *testing.T) {
	assert.Equal(t, "Google Sheet", api.Action{Type: api.ActionCreateSheet}.Kind())
	assert.Equal(t, "Google Doc", api.Action{Type: "createDoc"}.Kind())
	assert.Equal(t, "Google Doc", api.Action{}.Kind())
}
