package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Credentials is the service credential bundle presented to the identity
// service with every verification call. It is loaded once at startup;
// rotating credentials requires a restart.
type Credentials struct {
	ServiceID  string `json:"service_id"`
	ServiceKey string `json:"service_key"`
}

// LoadCredentials reads the credential bundle from a JSON file. Any failure
// here is a startup failure: the process must refuse to serve rather than
// run with a broken verifier.
func LoadCredentials(path string) (Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}
	if creds.ServiceID == "" || creds.ServiceKey == "" {
		return Credentials{}, errors.New("credentials missing service_id or service_key")
	}
	return creds, nil
}

// Service verifies tokens against the external identity service over HTTP.
type Service struct {
	baseURL string
	creds   Credentials
	httpc   *http.Client
}

func NewService(baseURL string, creds Credentials, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (s *Service) Verify(ctx context.Context, token string) (Identity, error) {
	payload, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return Identity{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/tokens/verify", bytes.NewReader(payload))
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Id", s.creds.ServiceID)
	req.Header.Set("X-Service-Key", s.creds.ServiceKey)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("identity service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return Identity{}, ErrInvalidToken
	default:
		return Identity{}, fmt.Errorf("identity service: unexpected status %d", resp.StatusCode)
	}

	var ident Identity
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		return Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	if ident.Subject == "" {
		return Identity{}, errors.New("identity service: response missing subject")
	}
	return ident, nil
}
