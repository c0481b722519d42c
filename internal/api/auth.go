package api

import (
	"context"
	"errors"
	"net/http"
)

// Login exchanges credentials for a session token. A 2xx answer without
// a token is reported as ErrNoToken.
func (c *Client) Login(
	ctx context.Context,
	email, password string,
) (*AuthResponse, error) {
	var env Envelope[AuthResponse]
	_, err := c.do(ctx, request{
		op:       "login",
		method:   http.MethodPost,
		path:     "/login",
		body:     loginRequest{Email: email, Password: password},
		fallback: "Login failed",
	}, &env)
	if err != nil {
		return nil, err
	}

	if env.Content.Token == "" {
		return nil, ErrNoToken
	}

	return &env.Content, nil
}

// Register creates an account. Rejections carry the first structured
// error message from the API, or its message, or "Registration failed".
func (c *Client) Register(
	ctx context.Context,
	fullName, email, password string,
) (Ack, error) {
	body, err := c.do(ctx, request{
		op:     "register",
		method: http.MethodPost,
		path:   "/register",
		body: registerRequest{
			FullName: fullName,
			Email:    email,
			Password: password,
		},
		fallback: "Registration failed",
	}, nil)
	if err != nil {
		return Ack{}, err
	}
	return ack(body), nil
}

// VerifyToken asks the API whether token is still valid. Every failure,
// transport or remote, is normalized to ErrTokenInvalid.
func (c *Client) VerifyToken(ctx context.Context, token string) (Ack, error) {
	body, err := c.do(ctx, request{
		op:       "verify token",
		method:   http.MethodPost,
		path:     "/verify-token",
		body:     verifyRequest{Token: token},
		fallback: "Token invalid",
	}, nil)
	if err != nil {
		return Ack{}, errors.Join(ErrTokenInvalid, err)
	}
	return ack(body), nil
}
