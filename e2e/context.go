package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TestContext carries shared state between steps: the target server, the
// bearer token and the last HTTP exchange.
type TestContext struct {
	BaseURL     string
	AccessToken string

	client       *http.Client
	lastStatus   int
	lastResponse map[string]interface{}
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.AccessToken = ""
	tc.lastStatus = 0
	tc.lastResponse = nil
}

// POST sends a JSON body to the path, attaching the bearer token when set.
func (tc *TestContext) POST(path string, body interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.AccessToken)
	}
	return tc.do(req)
}

// GET fetches the path with optional extra headers.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if tc.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.AccessToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastResponse = nil

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err == nil {
		tc.lastResponse = decoded
	}
	return nil
}

// LastStatus returns the status code of the last exchange.
func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

// GetResponseField returns a top-level field from the last JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	if tc.lastResponse == nil {
		return nil, fmt.Errorf("no JSON response recorded")
	}
	v, ok := tc.lastResponse[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response", field)
	}
	return v, nil
}

// ResponseContains reports whether the last response has the field.
func (tc *TestContext) ResponseContains(field string) bool {
	_, ok := tc.lastResponse[field]
	return ok
}

// GetAccessToken returns the current bearer token.
func (tc *TestContext) GetAccessToken() string {
	return tc.AccessToken
}
