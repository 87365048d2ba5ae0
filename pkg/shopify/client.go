package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client is an Admin GraphQL API client. It performs unary request/response
// calls that return structured data or a set of user-facing field errors.
type Client struct {
	// BaseURL is the full GraphQL endpoint. Exposed so tests can point the
	// client at a local server.
	BaseURL     string
	AccessToken string
	client      *http.Client
}

// NewClient creates a new Admin API client for the given shop and API version.
func NewClient(shopDomain, accessToken, apiVersion string) *Client {
	return &Client{
		BaseURL:     fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, apiVersion),
		AccessToken: accessToken,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// graphqlRequest is the wire shape of a GraphQL call.
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLError is a top-level GraphQL execution error.
type GraphQLError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// Do executes a GraphQL query and unmarshals the response data into out.
// Transport failures, non-2xx responses, and GraphQL execution errors are
// returned as errors; field-level userErrors are left to the caller, since
// they are part of each mutation's data shape.
func (c *Client) Do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute graphql request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("admin api returned status %d", resp.StatusCode)
	}

	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			if e.Message != "" {
				messages = append(messages, e.Message)
			}
		}
		return errors.New("graphql errors: " + strings.Join(messages, ", "))
	}
	if out != nil {
		if err := json.Unmarshal(decoded.Data, out); err != nil {
			return fmt.Errorf("decode graphql data: %w", err)
		}
	}
	return nil
}
