package backend

import (
	"context"
	"net/http"

	"storefront/internal/model"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/login",
		body:   model.LoginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Token == "" {
		return nil, &APIError{
			Method:   http.MethodPost,
			Endpoint: "/login",
			Status:   http.StatusOK,
			Message:  "response carries no token",
			Kind:     ErrMalformedResponse,
		}
	}

	return &resp, nil
}

// Register creates a new customer account.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	var user model.User
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/register",
		body:   req,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
