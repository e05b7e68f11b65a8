package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/existflow/scic/internal/logger"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Email string `json:"email"`
	} `json:"data"`
}

// Login authenticates against the backend, which sets the credential
// cookie, and starts the local session. It returns the session identity.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, c.cfg.URL(c.cfg.LoginPath), loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.sendPublic(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errorFromResponse(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", networkError(err)
	}

	var result loginResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if result.Status != "success" {
		return "", &Error{StatusCode: resp.StatusCode, Message: firstNonEmpty(result.Message, "login failed")}
	}

	identity := firstNonEmpty(result.Data.Email, email)
	if err := c.guard.Start(ctx, identity); err != nil {
		return "", err
	}

	c.log.Info("Logged in", logger.F("identity", identity))
	return identity, nil
}

// Logout ends the session. It never fails.
func (c *Client) Logout(ctx context.Context) {
	c.guard.End(ctx)
}
