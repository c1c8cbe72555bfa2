package api

import (
	"context"
	"fmt"

	"github.com/mindwell/mindwell-go/internal/notification"
)

// Preference endpoints. The server is authoritative: update and reset both
// return the normalized preference set, which callers adopt wholesale.

// FetchPreferences retrieves a user's notification preferences.
func (c *Client) FetchPreferences(ctx context.Context, userID string) ([]*notification.Preference, error) {
	c.apiCalls.Add(1)

	var dtos []*preferenceDTO
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&dtos).
		Get(fmt.Sprintf("/api/v1/users/%s/notification-preferences", userID))
	if err != nil || resp.IsError() {
		return nil, c.wrapError(err, resp, "fetch_preferences")
	}

	return c.toPreferences(dtos), nil
}

// UpdatePreferences submits a batch preference update and returns the
// server's authoritative result.
func (c *Client) UpdatePreferences(ctx context.Context, userID string, prefs []*notification.Preference) ([]*notification.Preference, error) {
	c.apiCalls.Add(1)

	body := make([]*preferenceDTO, 0, len(prefs))
	for _, p := range prefs {
		body = append(body, fromPreference(p))
	}

	var dtos []*preferenceDTO
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&dtos).
		Put(fmt.Sprintf("/api/v1/users/%s/notification-preferences", userID))
	if err != nil || resp.IsError() {
		return nil, c.wrapError(err, resp, "update_preferences")
	}

	return c.toPreferences(dtos), nil
}

// ResetToDefaults asks the backend to restore default preferences.
func (c *Client) ResetToDefaults(ctx context.Context, userID string) ([]*notification.Preference, error) {
	c.apiCalls.Add(1)

	var dtos []*preferenceDTO
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&dtos).
		Post(fmt.Sprintf("/api/v1/users/%s/notification-preferences/reset", userID))
	if err != nil || resp.IsError() {
		return nil, c.wrapError(err, resp, "reset_preferences")
	}

	return c.toPreferences(dtos), nil
}

func (c *Client) toPreferences(dtos []*preferenceDTO) []*notification.Preference {
	result := make([]*notification.Preference, 0, len(dtos))
	for _, dto := range dtos {
		result = append(result, c.toPreference(dto))
	}
	return result
}
