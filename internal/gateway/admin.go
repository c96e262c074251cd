package gateway

import (
	"context"
	"net/http"

	"folio/internal/apierr"
	"folio/internal/model"
)

const (
	loginPath   = "/api/admin/login"
	contactPath = "/api/contact"
)

// Endpoints lists the API paths served under the base URL.
func Endpoints() []string {
	return []string{videosPath, uploadPath, loginPath, contactPath}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  model.Admin `json:"user"`
}

type contactResponse struct {
	Message string `json:"message"`
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	if username == "" || password == "" {
		return LoginResult{}, apierr.New(apierr.KindValidation, "Username and password are required")
	}

	var result LoginResult
	err := c.doJSON(ctx, http.MethodPost, loginPath, "", loginRequest{Username: username, Password: password}, &result)
	if err != nil {
		return LoginResult{}, err
	}
	if result.Token == "" {
		return LoginResult{}, apierr.New(apierr.KindProtocol, "login response has no token")
	}
	if result.User.Username == "" {
		result.User.Username = username
	}
	return result, nil
}

// SubmitContact returns the server's confirmation message.
func (c *Client) SubmitContact(ctx context.Context, form model.ContactForm) (string, error) {
	if form.Name == "" || form.Email == "" || form.Message == "" {
		return "", apierr.New(apierr.KindValidation, "Name, email and message are required")
	}

	var resp contactResponse
	if err := c.doJSON(ctx, http.MethodPost, contactPath, "", form, &resp); err != nil {
		return "", err
	}
	if resp.Message == "" {
		resp.Message = "Message sent successfully!"
	}
	return resp.Message, nil
}

func (c *Client) FetchPortfolio(ctx context.Context) (model.Portfolio, error) {
	var p model.Portfolio
	if err := c.doJSON(ctx, http.MethodGet, c.portfolioURL, "", nil, &p); err != nil {
		return model.Portfolio{}, err
	}
	if p.Projects == nil {
		p.Projects = []model.Project{}
	}
	return p, nil
}
