// Package finalsurge is the HTTP client for the training platform: login,
// roster listing, workout listing, mailbox send and mailbox inbox listing.
// Every call is Bearer-authenticated except Login, and every failure is
// wrapped with one of the domain error categories.
package finalsurge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"eoinrun/coach-bot/internal/domain"
)

// workoutDateFormat is the platform's timestamp layout on workout records.
const workoutDateFormat = "2006-01-02T15:04:05"

type Client struct {
	baseURL string
	http    *http.Client
	// deviceID identifies this process in the login payload; generated once
	// so repeated logins look like the same device to the platform.
	deviceID string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		deviceID: uuid.NewString(),
	}
}

// Login exchanges the coach's identity for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload := map[string]string{
		"deviceManufacturer":     "",
		"deviceModel":            "Netscape",
		"deviceOperatingSystem":  "Win32",
		"deviceUniqueIdentifier": c.deviceID,
		"email":                  email,
		"password":               password,
	}
	data, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: build login request: %v", domain.ErrTransient, err)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: login: %v", domain.ErrTransient, err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: login status=%d", domain.ErrAuth, res.StatusCode)
	}

	var parsed struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode login response: %v", domain.ErrAuth, err)
	}
	if parsed.Data.Token == "" {
		return "", fmt.Errorf("%w: login returned no token", domain.ErrAuth)
	}
	return parsed.Data.Token, nil
}

// TeamRoster lists every team the coach owns with its member athletes.
func (c *Client) TeamRoster(ctx context.Context, token string) ([]domain.Team, error) {
	body, err := c.get(ctx, token, c.baseURL+"/TeamAthleteList")
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []struct {
			Name     string `json:"name"`
			Athletes []struct {
				UserKey   string `json:"user_key"`
				FirstName string `json:"first_name"`
				LastName  string `json:"last_name"`
				Email     string `json:"email"`
			} `json:"athletes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode roster: %v", domain.ErrData, err)
	}

	teams := make([]domain.Team, 0, len(parsed.Data))
	for _, t := range parsed.Data {
		team := domain.Team{Name: t.Name, Athletes: make([]domain.Athlete, 0, len(t.Athletes))}
		for _, m := range t.Athletes {
			team.Athletes = append(team.Athletes, domain.Athlete{
				UserKey:   m.UserKey,
				FirstName: m.FirstName,
				LastName:  m.LastName,
				Email:     m.Email,
			})
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// WorkoutList fetches one athlete's workout records over an inclusive civil
// date range.
func (c *Client) WorkoutList(ctx context.Context, token, userKey string, start, end time.Time) ([]domain.Workout, error) {
	u, _ := url.Parse(c.baseURL + "/WorkoutList")
	q := u.Query()
	q.Set("scope", "USER")
	q.Set("scopekey", userKey)
	q.Set("startdate", start.Format("2006-01-02"))
	q.Set("enddate", end.Format("2006-01-02"))
	q.Set("ishistory", "false")
	q.Set("completedonly", "false")
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, token, u.String())
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []struct {
			WorkoutDate       string `json:"workout_date"`
			WorkoutCompletion int    `json:"workout_completion"`
			Activities        []struct {
				ActivityTypeName       string   `json:"activity_type_name"`
				PlannedDuration        *float64 `json:"planned_duration"`
				PlannedAmount          *float64 `json:"planned_amount"`
				PlannedAmountType      *string  `json:"planned_amount_type"`
				PlannedPaceLow         *float64 `json:"planned_pace_low"`
				PlannedPaceLowType     *string  `json:"planned_pace_low_type"`
				PlannedPaceHigh        *float64 `json:"planned_pace_high"`
				PlannedPaceHighType    *string  `json:"planned_pace_high_type"`
				PlannedPaceDisplay     *string  `json:"planned_pace_display"`
				PlannedPaceDisplayType *string  `json:"planned_pace_display_type"`
			} `json:"Activities"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode workout list: %v", domain.ErrData, err)
	}

	out := make([]domain.Workout, 0, len(parsed.Data))
	for _, w := range parsed.Data {
		date, err := time.Parse(workoutDateFormat, w.WorkoutDate)
		if err != nil {
			return nil, fmt.Errorf("%w: workout_date %q: %v", domain.ErrData, w.WorkoutDate, err)
		}
		workout := domain.Workout{
			Date:       date,
			Completion: w.WorkoutCompletion,
			Activities: make([]domain.Activity, 0, len(w.Activities)),
		}
		for _, a := range w.Activities {
			workout.Activities = append(workout.Activities, domain.Activity{
				TypeName:               a.ActivityTypeName,
				PlannedDuration:        a.PlannedDuration,
				PlannedAmount:          a.PlannedAmount,
				PlannedAmountType:      a.PlannedAmountType,
				PlannedPaceLow:         a.PlannedPaceLow,
				PlannedPaceLowType:     a.PlannedPaceLowType,
				PlannedPaceHigh:        a.PlannedPaceHigh,
				PlannedPaceHighType:    a.PlannedPaceHighType,
				PlannedPaceDisplay:     a.PlannedPaceDisplay,
				PlannedPaceDisplayType: a.PlannedPaceDisplayType,
			})
		}
		out = append(out, workout)
	}
	return out, nil
}

// SendMessage posts one mailbox message to a single athlete.
func (c *Client) SendMessage(ctx context.Context, token, userKey, subject, body string) error {
	payload := map[string]string{
		"body":         body,
		"subject":      subject,
		"to_club_keys": "",
		"to_user_keys": userKey,
	}
	data, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/MailboxMessageSend", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: build send request: %v", domain.ErrTransient, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json;charset=utf-8")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send message: %v", domain.ErrTransient, err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	if res.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: send message status=401", domain.ErrAuth)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: send message status=%d", domain.ErrTransient, res.StatusCode)
	}
	return nil
}

// InboxMessages lists inbound mailbox messages. A non-empty cursor is passed
// through as the BeforeTime parameter so the platform only returns messages
// newer than the watermark.
func (c *Client) InboxMessages(ctx context.Context, token, cursor string) ([]domain.InboxMessage, error) {
	u, _ := url.Parse(c.baseURL + "/MailboxMessageList")
	q := u.Query()
	q.Set("SentItems", "false")
	if cursor != "" {
		q.Set("BeforeTime", cursor)
	}
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, token, u.String())
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []struct {
			From struct {
				Key  string `json:"key"`
				Name string `json:"name"`
			} `json:"from"`
			Subject   string `json:"subject"`
			Text      string `json:"text"`
			Timestamp string `json:"timestamp"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode inbox: %v", domain.ErrData, err)
	}

	out := make([]domain.InboxMessage, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		out = append(out, domain.InboxMessage{
			SenderKey:  m.From.Key,
			SenderName: m.From.Name,
			Subject:    m.Subject,
			Text:       m.Text,
			Timestamp:  m.Timestamp,
		})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, token, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrTransient, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: status=401", domain.ErrAuth)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status=%d", domain.ErrTransient, res.StatusCode)
	}
	return body, nil
}
