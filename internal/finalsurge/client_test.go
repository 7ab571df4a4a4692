package finalsurge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eoinrun/coach-bot/internal/domain"
)

func TestLoginSendsDeviceMetadataAndReturnsToken(t *testing.T) {
	var captured map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"data":{"token":"tok-123"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	token, err := c.Login(context.Background(), "coach@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok-123", token)

	require.Equal(t, "coach@example.com", captured["email"])
	require.Equal(t, "secret", captured["password"])
	require.Equal(t, "Netscape", captured["deviceModel"])
	require.Equal(t, "Win32", captured["deviceOperatingSystem"])
	require.NotEmpty(t, captured["deviceUniqueIdentifier"])
}

func TestLoginRejectionIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Login(context.Background(), "coach@example.com", "bad")
	require.ErrorIs(t, err, domain.ErrAuth)
}

func TestLoginWithoutTokenIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Login(context.Background(), "coach@example.com", "secret")
	require.ErrorIs(t, err, domain.ErrAuth)
}

func TestTeamRosterParsesTeamsAndMembers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/TeamAthleteList", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":[{"name":"Tuesday Group","athletes":[
			{"user_key":"u1","first_name":"Aoife","last_name":"Byrne","email":"aoife@example.com"},
			{"user_key":"u2","first_name":"Brian","last_name":"Walsh","email":"brian@example.com"}
		]}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	teams, err := c.TeamRoster(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, teams, 1)
	require.Equal(t, "Tuesday Group", teams[0].Name)
	require.Len(t, teams[0].Athletes, 2)
	require.Equal(t, "u1", teams[0].Athletes[0].UserKey)
	require.Equal(t, "Aoife Byrne", teams[0].Athletes[0].FullName())
}

func TestWorkoutListParsesNullablePlannedFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "USER", q.Get("scope"))
		require.Equal(t, "u1", q.Get("scopekey"))
		require.Equal(t, "2024-06-09", q.Get("startdate"))
		require.Equal(t, "2024-06-15", q.Get("enddate"))
		require.Equal(t, "false", q.Get("ishistory"))
		require.Equal(t, "false", q.Get("completedonly"))
		w.Write([]byte(`{"data":[
			{"workout_date":"2024-06-10T00:00:00","workout_completion":1,
			 "Activities":[{"activity_type_name":"Run","planned_duration":30,"planned_amount":null}]},
			{"workout_date":"2024-06-11T00:00:00","workout_completion":0,
			 "Activities":[{"activity_type_name":"Rest","planned_duration":null}]}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	start := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	workouts, err := c.WorkoutList(context.Background(), "tok", "u1", start, end)
	require.NoError(t, err)
	require.Len(t, workouts, 2)

	require.True(t, workouts[0].Completed())
	require.NotNil(t, workouts[0].Activities[0].PlannedDuration)
	require.Equal(t, float64(30), *workouts[0].Activities[0].PlannedDuration)
	require.True(t, workouts[0].Activities[0].Planned())

	require.False(t, workouts[1].Completed())
	require.False(t, workouts[1].Activities[0].Planned())
}

func TestWorkoutListUnauthorizedIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.WorkoutList(context.Background(), "stale", "u1", time.Now(), time.Now())
	require.ErrorIs(t, err, domain.ErrAuth)
}

func TestSendMessagePostsPayload(t *testing.T) {
	var captured map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/MailboxMessageSend", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	err := c.SendMessage(context.Background(), "tok", "u1", "Check in", "Hi Aoife")
	require.NoError(t, err)
	require.Equal(t, "u1", captured["to_user_keys"])
	require.Equal(t, "", captured["to_club_keys"])
	require.Equal(t, "Check in", captured["subject"])
	require.Equal(t, "Hi Aoife", captured["body"])
}

func TestSendMessageServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	err := c.SendMessage(context.Background(), "tok", "u1", "s", "b")
	require.ErrorIs(t, err, domain.ErrTransient)
}

func TestInboxMessagesPassesCursorAsBeforeTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "false", q.Get("SentItems"))
		require.Equal(t, "2024-06-10T00:00:00", q.Get("BeforeTime"))
		w.Write([]byte(`{"data":[
			{"from":{"key":"u1","name":"Aoife"},"subject":"Hello","text":"ok","timestamp":"2024-06-10T10:00:00"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	messages, err := c.InboxMessages(context.Background(), "tok", "2024-06-10T00:00:00")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "u1", messages[0].SenderKey)
	require.Equal(t, "Aoife", messages[0].SenderName)
	require.Equal(t, "Hello", messages[0].Subject)
	require.Equal(t, "2024-06-10T10:00:00", messages[0].Timestamp)
}

func TestInboxMessagesOmitsEmptyCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["BeforeTime"]
		require.False(t, present)
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	messages, err := c.InboxMessages(context.Background(), "tok", "")
	require.NoError(t, err)
	require.Empty(t, messages)
}
