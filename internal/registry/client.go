// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mezuri/mezuri/internal/gitx"
	"github.com/mezuri/mezuri/pkg/version"
)

// maxResponseBytes bounds registry response bodies (10 MB). Protects the
// client from malformed or hostile registries.
const maxResponseBytes = 10 << 20

// ErrRegistry is the sentinel error wrapped by RegistryError.
var ErrRegistry = errors.New("registry error")

type (
	// Client is the thin transport the publish workflow uses to talk to a
	// registry. All calls block until the registry responds or the HTTP
	// client times out.
	Client struct {
		baseURL    string
		httpClient *http.Client
	}

	// RegistryError is returned for non-2xx registry responses. It unwraps
	// to ErrNotFound for 404 and ErrConflict for 409 so callers can use
	// errors.Is against the registry taxonomy.
	RegistryError struct {
		StatusCode int
		Message    string
	}

	operatorEnvelope struct {
		Component Operator `json:"component"`
	}

	versionEnvelope struct {
		Version OperatorVersion `json:"version"`
	}

	versionsEnvelope struct {
		Versions []versionSummary `json:"versions"`
	}
)

// Error implements the error interface.
func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry responded %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the HTTP status onto the registry error taxonomy.
func (e *RegistryError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return ErrRegistry
	}
}

// NewClient creates a client for the registry at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RegisterOperator registers a new operator name with its git remote.
func (c *Client) RegisterOperator(ctx context.Context, name string, remoteURL gitx.GitURL) (Operator, error) {
	var env operatorEnvelope
	err := c.post(ctx, "/operators", map[string]string{
		"name":         name,
		"gitRemoteUrl": remoteURL.String(),
	}, &env)
	return env.Component, err
}

// GetOperator fetches one operator record.
func (c *Client) GetOperator(ctx context.Context, name string) (Operator, error) {
	var env operatorEnvelope
	err := c.get(ctx, "/operators/"+url.PathEscape(name), &env)
	return env.Component, err
}

// RegisterVersion asks the registry to record a published version. The
// registry verifies the claim against the remote itself before accepting.
func (c *Client) RegisterVersion(ctx context.Context, operatorName string, tag version.Tag, hash gitx.GitCommit) (OperatorVersion, error) {
	var env versionEnvelope
	err := c.post(ctx, "/operators/"+url.PathEscape(operatorName)+"/versions", map[string]string{
		"version":      tag.Version.String(),
		"version_tag":  tag.String(),
		"version_hash": hash.String(),
	}, &env)
	return env.Version, err
}

// ListVersions fetches the operator's published version summaries.
func (c *Client) ListVersions(ctx context.Context, operatorName string) ([]versionSummary, error) {
	var env versionsEnvelope
	err := c.get(ctx, "/operators/"+url.PathEscape(operatorName)+"/versions", &env)
	return env.Versions, err
}

// Push notifies the registry of a published version, registering the
// operator first if the registry does not know it yet. Safe to repeat: an
// already-registered operator is not an error, and re-registering an
// already-recorded version surfaces ErrConflict without touching the store.
func (c *Client) Push(ctx context.Context, operatorName string, remoteURL gitx.GitURL, tag version.Tag, hash gitx.GitCommit) (OperatorVersion, error) {
	if _, err := c.GetOperator(ctx, operatorName); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return OperatorVersion{}, err
		}
		if _, err := c.RegisterOperator(ctx, operatorName, remoteURL); err != nil && !errors.Is(err, ErrConflict) {
			return OperatorVersion{}, err
		}
	}
	return c.RegisterVersion(ctx, operatorName, tag, hash)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling registry: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Response body close error is unactionable

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading registry response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body errorBody
		_ = json.Unmarshal(data, &body) //nolint:errcheck // Fall back to the raw status on a non-JSON body
		return &RegistryError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding registry response: %w", err)
	}
	return nil
}
