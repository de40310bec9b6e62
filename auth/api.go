package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// Endpoint paths of the user API, resolved against the configured base URL.
const (
	LoginPath             = "/User/Login"
	LogoutPath            = "/User/Logout"
	RefreshPath           = "/User/Refresh"
	ProfilePath           = "/User/"
	CreateUserPath        = "/User/CreateUser"
	SendPasswordResetPath = "/User/SendPasswordReset"
	ChangePasswordPath    = "/User/ChangePassword"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type profileResponse struct {
	ID       *string `json:"id"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// do issues one JSON call against the API and maps the outcome onto the
// client error taxonomy. The bearer flag attaches the stored access token;
// the refresh call must never set it.
func (m *Manager) do(ctx context.Context, method, path string, payload, out any, bearer bool) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer {
		if raw, ok := m.store.Read(); ok {
			req.Header.Set("Authorization", "Bearer "+raw)
		}
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		// The status-0 case: DNS failure, refused connection, cancelled context.
		return errors.Wrap(NetworkUnavailableErr, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

func statusError(resp *http.Response) error {
	var serverMsg errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&serverMsg) // best effort

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return UnauthorizedErr
	case resp.StatusCode >= http.StatusInternalServerError:
		return errors.Wrap(ServerErr, resp.Status)
	default:
		return &ValidationError{
			Status:  resp.StatusCode,
			Message: serverMsg.Message,
			Fields:  serverMsg.Errors,
		}
	}
}
