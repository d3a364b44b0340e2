package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"saldo/internal/auth"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignUp implements auth.Authenticator. The backend sends a confirmation
// mail; no session exists until the user signs in.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	body := credentials{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, authPath+"/signup", nil, body, "", nil); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	return nil
}

// SignIn implements auth.Authenticator via the password grant.
func (c *Client) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	q := url.Values{}
	q.Set("grant_type", "password")

	var resp tokenResponse
	body := credentials{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, authPath+"/token", q, body, "", &resp); err != nil {
		return auth.Session{}, fmt.Errorf("sign in: %w", err)
	}

	expires, err := auth.TokenExpiry(resp.AccessToken)
	if err != nil {
		// Fall back to the advertised lifetime when the token is opaque.
		expires = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return auth.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
		ExpiresAt:    expires,
	}, nil
}

// SignOut implements auth.Authenticator and revokes the given token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	u := c.baseURL + authPath + "/logout"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sign out: status %d", resp.StatusCode)
	}
	return nil
}
