package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linkflow/linkflow/internal/model"
)

const nextNumberRPC = "/rest/v1/rpc/get_next_number_for_group"

// RPCClient calls get_next_number_for_group through a PostgREST-style HTTP gateway.
type RPCClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRPCClient(baseURL, apiKey string) *RPCClient {
	return &RPCClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type nextNumberRequest struct {
	GroupSlug string `json:"group_slug"`
}

func (c *RPCClient) SelectNextNumber(ctx context.Context, groupSlug string) (model.NumberSelection, error) {
	if groupSlug == "" {
		return model.NumberSelection{}, model.ErrNoActiveNumber
	}

	reqBody, err := json.Marshal(nextNumberRequest{GroupSlug: groupSlug})
	if err != nil {
		return model.NumberSelection{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+nextNumberRPC, bytes.NewReader(reqBody))
	if err != nil {
		return model.NumberSelection{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return model.NumberSelection{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return model.NumberSelection{}, fmt.Errorf("unexpected status code: %d body=%q", resp.StatusCode, string(body))
	}

	rows, err := decodeSelections(body)
	if err != nil {
		return model.NumberSelection{}, fmt.Errorf("failed to decode json: %w body=%q", err, string(body))
	}
	if len(rows) == 0 || rows[0].Phone == "" {
		return model.NumberSelection{}, model.ErrNoActiveNumber
	}
	return rows[0], nil
}

// decodeSelections accepts the set-returning form (array) as well as a single object.
func decodeSelections(body []byte) ([]model.NumberSelection, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '{' {
		var one model.NumberSelection
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, err
		}
		return []model.NumberSelection{one}, nil
	}

	var rows []model.NumberSelection
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
