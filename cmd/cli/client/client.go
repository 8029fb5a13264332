package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/config"
)

// ErrNotLoggedIn is returned by authenticated calls when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in, run: neatplan login --username <name>")

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Call sends payload as JSON (when non-nil) to the API and decodes the response into
// out (when non-nil). Non-2xx responses become errors carrying the API's message.
func Call(method, path string, payload, out any) error {
	return do(method, path, "", payload, out)
}

// AuthCall is Call with the stored bearer token.
func AuthCall(method, path string, payload, out any) error {
	token, err := config.ReadToken()
	if err != nil || token == "" {
		return ErrNotLoggedIn
	}
	return do(method, path, token, payload, out)
}

func do(method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call API: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if len(apiErr.Fields) > 0 {
				return fmt.Errorf("API error (%d): %s %v", resp.StatusCode, apiErr.Error, apiErr.Fields)
			}
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(data))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
