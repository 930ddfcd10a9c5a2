// Package client talks to a staffgrid server: a small REST client that
// satisfies the grid's backend contract, plus a websocket follower for the
// change stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"staffgrid/internal/model"
)

// ErrNotFound mirrors the server's 404 responses.
var ErrNotFound = errors.New("not found")

type Client struct {
	base    string
	session string
	hc      *http.Client
}

// New builds a client for the server at baseURL. sessionID is sent with
// every write so the caller can recognize its own events on the stream.
func New(baseURL, sessionID string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("client: base url is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("client: bad base url: %w", err)
	}
	return &Client{
		base:    baseURL,
		session: strings.TrimSpace(sessionID),
		hc:      &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.Header.Set("X-Session-ID", c.session)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Snapshot loads the grid universe for one department over the server's
// week horizon (or weeks columns when > 0).
func (c *Client) Snapshot(ctx context.Context, department string, weeks int) (*model.Snapshot, error) {
	q := url.Values{}
	if department != "" {
		q.Set("department", department)
	}
	if weeks > 0 {
		q.Set("weeks", strconv.Itoa(weeks))
	}
	path := "/api/snapshot"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var snap model.Snapshot
	if err := c.do(ctx, http.MethodGet, path, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) SetHours(ctx context.Context, assignmentID, weekKey string, hours float64) (model.Assignment, error) {
	var a model.Assignment
	err := c.do(ctx, http.MethodPatch, "/api/assignments/"+url.PathEscape(assignmentID)+"/hours",
		map[string]any{"weekKey": weekKey, "hours": hours}, &a)
	return a, err
}

func (c *Client) SetHoursBulk(ctx context.Context, cells []model.CellRef, hours float64) ([]model.Assignment, error) {
	var updated []model.Assignment
	err := c.do(ctx, http.MethodPost, "/api/assignments/bulk",
		map[string]any{"cells": cells, "hours": hours}, &updated)
	return updated, err
}

func (c *Client) Assignment(ctx context.Context, id string) (model.Assignment, error) {
	var a model.Assignment
	err := c.do(ctx, http.MethodGet, "/api/assignments/"+url.PathEscape(id), nil, &a)
	return a, err
}

func (c *Client) CreateAssignment(ctx context.Context, personID, projectID string) (model.Assignment, error) {
	var a model.Assignment
	err := c.do(ctx, http.MethodPost, "/api/assignments",
		map[string]any{"personId": personID, "projectId": projectID}, &a)
	return a, err
}

func (c *Client) DeleteAssignment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/assignments/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListPeople(ctx context.Context) ([]model.Person, error) {
	var people []model.Person
	err := c.do(ctx, http.MethodGet, "/api/people", nil, &people)
	return people, err
}

func (c *Client) CreatePerson(ctx context.Context, p model.Person) (model.Person, error) {
	var created model.Person
	err := c.do(ctx, http.MethodPost, "/api/people", p, &created)
	return created, err
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := c.do(ctx, http.MethodGet, "/api/projects", nil, &projects)
	return projects, err
}

func (c *Client) CreateProject(ctx context.Context, p model.Project) (model.Project, error) {
	var created model.Project
	err := c.do(ctx, http.MethodPost, "/api/projects", p, &created)
	return created, err
}
