// Package datastore implements the HTTP byte-blob adapter workers use
// to upload and download file payloads keyed by job id.
package datastore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// userAgent is a wire-compatibility literal, not a descriptive label:
// the Data Store matches on it the same way regardless of which
// runtime speaks HTTP to it, so it must stay exactly "python service".
const userAgent = "python service"

var storedKeyPattern = regexp.MustCompile(`[0-9]+`)

// Client talks to one Data Store instance over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client for the Data Store at address, which may be
// given with or without a leading "http://".
func New(address string) *Client {
	addr := strings.TrimPrefix(address, "http://")
	return &Client{
		baseURL: "http://" + addr,
		http:    &http.Client{},
	}
}

// PutBytes uploads data under jobID and returns the key it was stored
// under.
func (c *Client) PutBytes(ctx context.Context, data []byte, jobID uint64) (uint64, error) {
	url := fmt.Sprintf("%s/data/%d", c.baseURL, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(data)))
	if err != nil {
		return 0, newError("can't build put request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.ContentLength = int64(len(data))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, newError("put request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, newError("can't read put response", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return 0, newError(fmt.Sprintf("%d - %s", resp.StatusCode, string(body)), nil)
	}

	match := storedKeyPattern.FindString(string(body))
	if match == "" {
		return 0, newError("can't find stored key in response", nil)
	}
	key, err := strconv.ParseUint(match, 10, 64)
	if err != nil {
		return 0, newError("can't parse stored key from response", err)
	}
	return key, nil
}

// PutFile reads filepath and uploads its contents under jobID.
func (c *Client) PutFile(ctx context.Context, filepath string, jobID uint64) (uint64, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return 0, newError("can't read file", err)
	}
	return c.PutBytes(ctx, data, jobID)
}

// GetFile downloads the payload stored under eventID within jobID.
func (c *Client) GetFile(ctx context.Context, jobID, eventID uint64) ([]byte, error) {
	url := fmt.Sprintf("%s/data/%d/%d", c.baseURL, jobID, eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newError("can't build get request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newError("get request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError("can't read get response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError(fmt.Sprintf("%d - %s", resp.StatusCode, string(body)), nil)
	}
	return body, nil
}

// SaveFile downloads the payload and writes it to filepath.
func (c *Client) SaveFile(ctx context.Context, jobID, eventID uint64, filepath string) error {
	data, err := c.GetFile(ctx, jobID, eventID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath, data, 0o644); err != nil {
		return newError("can't write file", err)
	}
	return nil
}

// SaveTmp downloads the payload into a fresh temp file and returns its
// path. Callers must remove it themselves (see RemoveTmp).
func (c *Client) SaveTmp(ctx context.Context, jobID, eventID uint64, prefix, dir string) (string, error) {
	data, err := c.GetFile(ctx, jobID, eventID)
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, prefix+"*.tmp")
	if err != nil {
		return "", newError("can't create temp file", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", newError("can't write temp file", err)
	}
	return f.Name(), nil
}

// RemoveTmp deletes a file previously returned by SaveTmp, ignoring a
// missing file.
func RemoveTmp(filepath string) error {
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(filepath)
}
