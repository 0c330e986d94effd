package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Row mirrors one row of the server's responses table.
type Row struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Attending bool   `json:"attending"`
	Category  string `json:"category"`
	Dish      string `json:"dish"`
	CreatedAt int64  `json:"createdAt"`
}

// Draft is a row about to be inserted; the server assigns id and
// creation time.
type Draft struct {
	Name      string `json:"name"`
	Attending bool   `json:"attending"`
	Category  string `json:"category"`
	Dish      string `json:"dish"`
}

// Patch carries only the fields an update touches.
type Patch struct {
	Name      *string `json:"name,omitempty"`
	Attending *bool   `json:"attending,omitempty"`
	Category  *string `json:"category,omitempty"`
	Dish      *string `json:"dish,omitempty"`
}

// Table talks to the remote responses table over its JSON API. It does
// no retries, no caching and no optimistic anything; callers refetch
// after every change notification.
type Table struct {
	baseURL    string
	httpClient *http.Client
}

func NewTable(baseURL string) *Table {
	return &Table{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchAll grabs the whole table, oldest row first. A body that can't
// be decoded degrades to an empty snapshot instead of an error; the
// next change notification refetches anyway.
func (t *Table) FetchAll(ctx context.Context) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/api/responses", nil)
	if err != nil {
		return nil, fmt.Errorf("(*Table).FetchAll: %w", err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("(*Table).FetchAll: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("(*Table).FetchAll: %s", respError(resp))
	}

	rows := make([]Row, 0)
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		slog.Warn("malformed snapshot, treating as empty", "error", err)
		return make([]Row, 0), nil
	}
	return rows, nil
}

// Insert creates one row and reports the id the server assigned to it.
func (t *Table) Insert(ctx context.Context, draft Draft) (string, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("(*Table).Insert: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/responses", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("(*Table).Insert: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("(*Table).Insert: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("(*Table).Insert: %s", respError(resp))
	}

	var respBody struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("(*Table).Insert: %w", err)
	}
	if respBody.ID == "" {
		return "", fmt.Errorf("(*Table).Insert: server returned no id")
	}
	return respBody.ID, nil
}

// Update patches exactly one row by id.
func (t *Table) Update(ctx context.Context, id string, patch Patch) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("(*Table).Update: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, t.baseURL+"/api/responses/"+id, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("(*Table).Update: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("(*Table).Update: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("(*Table).Update: %s", respError(resp))
	}
	return nil
}

// Remove deletes one row by id.
func (t *Table) Remove(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, t.baseURL+"/api/responses/"+id, nil)
	if err != nil {
		return fmt.Errorf("(*Table).Remove: %w", err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("(*Table).Remove: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("(*Table).Remove: %s", respError(resp))
	}
	return nil
}

func respError(resp *http.Response) string {
	text, err := io.ReadAll(io.LimitReader(resp.Body, 512))
	if err != nil || len(bytes.TrimSpace(text)) == 0 {
		return resp.Status
	}
	return fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(text)))
}
