package prms

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Credentials are sent once to obtain a token and never stored.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a successful login: the bearer token and the profile.
type LoginResult struct {
	Token string
	User  User
}

// Login exchanges credentials for a token. The token is not installed on the
// client; callers decide whether to persist it.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	var v checks
	v.required("email", creds.Email, "Email is required")
	v.required("password", creds.Password, "Password is required")
	if err := v.err(); err != nil {
		return LoginResult{}, err
	}

	var out LoginResult
	rq := call{method: http.MethodPost, path: []string{"auth", "login"}, body: creds}
	err := c.doRaw(ctx, rq, func(path string, raw []byte) error {
		return decodeLogin(path, raw, &out)
	})
	if err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

// Me returns the profile behind the current token.
func (c *Client) Me(ctx context.Context) (User, error) {
	rq := call{method: http.MethodGet, path: []string{"auth", "me"}, keys: []string{"user"}}
	return fetchOne[User](ctx, c, rq)
}

// decodeLogin reads the token from the top level or from data, and the user
// through the regular envelope boundary.
func decodeLogin(path string, raw []byte, out *LoginResult) error {
	var env struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
		Data  struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return &ShapeError{Path: path, Detail: "malformed login response", Err: err}
	}
	token := strings.TrimSpace(env.Token)
	if token == "" {
		token = strings.TrimSpace(env.Data.Token)
	}
	if token == "" {
		return &ShapeError{Path: path, Detail: "login response has no token", Field: "token"}
	}
	userRaw := raw
	if len(env.User) > 0 {
		userRaw = env.User
	}
	if err := decodePayload(path, userRaw, []string{"user"}, &out.User); err != nil {
		return err
	}
	out.Token = token
	return nil
}
