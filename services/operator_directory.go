package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OperatorInfo is the back-office user behind an access token.
type OperatorInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OperatorDirectory resolves access tokens to operator profiles.
type OperatorDirectory interface {
	Lookup(ctx context.Context, accessToken string) (*OperatorInfo, error)
}

// Auth0Directory reads operator profiles from Auth0's /userinfo endpoint.
type Auth0Directory struct {
	baseURL    string
	httpClient *http.Client
}

// NewAuth0Directory creates a directory for the tenant domain. A domain
// with a scheme is used as is.
func NewAuth0Directory(domain string) *Auth0Directory {
	baseURL := domain
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		baseURL = "https://" + domain
	}
	return &Auth0Directory{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *Auth0Directory) Lookup(ctx context.Context, accessToken string) (*OperatorInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var info OperatorInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	return &info, nil
}
