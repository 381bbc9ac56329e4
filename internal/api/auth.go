package api

import (
	"context"
	"net/http"

	"github.com/salesops/leadscope/internal/session"
)

// LoginResult is the credential pair returned by login.
type LoginResult struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var res LoginResult
	if err := c.send(ctx, http.MethodPost, "/auth/login", payload, &res); err != nil {
		return LoginResult{}, err
	}
	c.SetToken(res.Token)
	return res, nil
}

// Register creates a new account. The backend does not log the new
// account in; the caller routes back to login.
func (c *Client) Register(ctx context.Context, name, email, password string) (session.User, error) {
	payload := map[string]string{"name": name, "email": email, "password": password}
	var user session.User
	if err := c.send(ctx, http.MethodPost, "/auth/register", payload, &user); err != nil {
		return session.User{}, err
	}
	return user, nil
}

// Me fetches the profile for the current token.
func (c *Client) Me(ctx context.Context) (session.User, error) {
	var user session.User
	if err := c.get(ctx, "/auth/me", nil, &user); err != nil {
		return session.User{}, err
	}
	return user, nil
}
