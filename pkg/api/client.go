package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/angryss/idp-cli/pkg/model"
)

const (
	requestTimeout = 30 * time.Second
	retryCount     = 3
	retryInterval  = 500 * time.Millisecond
)

type (
	// Client fetches blueprints and stacks from the IDP API.
	Client struct {
		BaseURL string
		APIKey  string

		http *httpclient.Client
	}

	AuthenticationError struct{ Status int }
	NotFoundError       struct{ Resource string }
	APIError            struct {
		Status int
		Body   string
	}
)

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): check your API key", e.Status)
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %q not found: verify the identifier", e.Resource)
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Body)
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		http: httpclient.NewClient(
			httpclient.WithHTTPTimeout(requestTimeout),
			httpclient.WithRetryCount(retryCount),
			httpclient.WithRetrier(heimdall.NewRetrier(heimdall.NewConstantBackoff(retryInterval, 50*time.Millisecond))),
		),
	}
}

// GetBlueprint fetches a blueprint by id or name.
func (c *Client) GetBlueprint(identifier string) (*model.Blueprint, error) {
	var bp model.Blueprint
	if err := c.get(fmt.Sprintf("/api/blueprints/%s", url.PathEscape(identifier)), identifier, &bp); err != nil {
		return nil, err
	}
	return &bp, nil
}

// GetStack fetches a stack by id or name.
func (c *Client) GetStack(identifier string) (*model.Stack, error) {
	var st model.Stack
	if err := c.get(fmt.Sprintf("/api/stacks/%s", url.PathEscape(identifier)), identifier, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) get(path, identifier string, out any) error {
	endpoint := c.BaseURL + path
	zap.S().Debugf("GET %s", endpoint)

	headers := http.Header{}
	headers.Set("X-API-Key", c.APIKey)
	headers.Set("Accept", "application/json")

	res, err := c.http.Get(endpoint, headers)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", endpoint)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return &AuthenticationError{Status: res.StatusCode}
	case res.StatusCode == http.StatusNotFound:
		return &NotFoundError{Resource: identifier}
	case res.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &APIError{Status: res.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode response body")
	}
	return nil
}
