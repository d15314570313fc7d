package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mgilsanz/presencia/internal/domain"
)

// Client talks JSON-RPC 2.0 to an Odoo-style ERP. It is the single
// implementation of the attendance gateway consumed by the session
// machine.
//
// The endpoint URL is injected via Config and may be swapped at runtime
// with Reconfigure; there is no package-level mutable state.
type Client struct {
	mu       sync.RWMutex
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a gateway client against the configured endpoint.
func NewClient(cfg Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// Reconfigure points the client at a different RPC endpoint. Used by the
// settings flow; in-flight calls keep the URL they started with.
func (c *Client) Reconfigure(url string) {
	c.mu.Lock()
	c.cfg.URL = url
	c.mu.Unlock()
}

// URL returns the currently configured endpoint.
func (c *Client) URL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.URL
}

// rpcRequest is the JSON-RPC 2.0 envelope Odoo expects.
type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      string    `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    rpcErrorData `json:"data"`
}

type rpcErrorData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Authenticate verifies credentials against the common service. Odoo
// returns the numeric uid on success and false on bad credentials.
func (c *Client) Authenticate(ctx context.Context, login, password string) (domain.Identity, error) {
	cfg := c.config()
	raw, err := c.call(ctx, "common", "authenticate", "",
		[]any{cfg.Database, login, password, map[string]any{}}, 0)
	if err != nil {
		return domain.Identity{}, err
	}

	var uid int64
	if jsonErr := json.Unmarshal(raw, &uid); jsonErr != nil || uid == 0 {
		// A false result decodes as neither int nor nonzero uid.
		return domain.Identity{}, ErrAuthFailed
	}
	return domain.Identity{UID: uid, Login: login, Password: password}, nil
}

// FetchAssignedProjects lists the active projects the employee may book
// time against.
func (c *Client) FetchAssignedProjects(ctx context.Context, id domain.Identity) ([]domain.Project, error) {
	cfg := c.config()
	raw, err := c.call(ctx, "object", "execute_kw", "project.project",
		[]any{
			cfg.Database, id.UID, id.Password,
			"project.project", "search_read",
			[]any{[]any{[]any{"active", "=", true}}},
			map[string]any{"fields": []string{"id", "name"}, "limit": cfg.ReadLimit},
		}, cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decoding project list: %w", err)
	}
	projects := make([]domain.Project, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, domain.Project{ID: r.ID, Label: r.Name})
	}
	return projects, nil
}

// FetchProjectActivities lists the tasks of one project, with their
// stage label when the ERP provides one.
func (c *Client) FetchProjectActivities(ctx context.Context, id domain.Identity, projectID int64) ([]domain.Task, error) {
	cfg := c.config()
	raw, err := c.call(ctx, "object", "execute_kw", "project.task",
		[]any{
			cfg.Database, id.UID, id.Password,
			"project.task", "search_read",
			[]any{[]any{[]any{"project_id", "=", projectID}}},
			map[string]any{"fields": []string{"id", "name", "stage_id"}, "limit": cfg.ReadLimit},
		}, cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID      int64           `json:"id"`
		Name    string          `json:"name"`
		StageID json.RawMessage `json:"stage_id"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decoding task list: %w", err)
	}
	tasks := make([]domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, domain.Task{ID: r.ID, Label: r.Name, Stage: stageLabel(r.StageID)})
	}
	return tasks, nil
}

// SubmitAttendance posts one check-in or check-out event. Submissions
// are never retried: a duplicated punch is worse than a reported error.
func (c *Client) SubmitAttendance(ctx context.Context, id domain.Identity, ev domain.AttendanceEvent) error {
	cfg := c.config()
	vals := map[string]any{
		"project_id":   ev.Selection.Project.ID,
		"actividad_id": ev.Selection.Task.ID,
		"next_action":  string(ev.Action),
		"observation":  ev.Observations,
		"quality":      ev.Quality,
		"lat":          ev.Coordinates.Latitude,
		"long":         ev.Coordinates.Longitude,
	}
	if ev.Progress != nil {
		vals["progress"] = *ev.Progress
	}

	_, err := c.call(ctx, "object", "execute_kw", "hr.employee",
		[]any{
			cfg.Database, id.UID, id.Password,
			"hr.employee", "attendance_manual",
			[]any{vals},
		}, 0)
	return err
}

// Available checks whether the RPC endpoint is reachable.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

func (c *Client) config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// call performs one JSON-RPC invocation, retrying up to maxRetries times
// on transport faults. Remote faults are mapped onto the error taxonomy.
func (c *Client) call(ctx context.Context, service, method, model string, args []any, maxRetries int) (json.RawMessage, error) {
	start := time.Now()
	cfg := c.config()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	body := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      uuid.New().String(),
	}

	var lastErr error
	attempts := 1 + maxRetries

	for i := 0; i < attempts; i++ {
		raw, err := c.doRequest(ctx, cfg.URL, body)
		if err == nil {
			c.observer.OnCallComplete(RPCCallEvent{
				Service:   service,
				Method:    method,
				Model:     model,
				LatencyMs: time.Since(start).Milliseconds(),
				Success:   true,
			})
			return raw, nil
		}
		lastErr = err

		// Remote faults and cancellation are not transient; don't retry.
		if errors.Is(err, ErrRemote) || errors.Is(err, ErrNoOpenRecord) || ctx.Err() != nil {
			break
		}
	}

	mapped := mapTransportError(ctx, lastErr)
	c.observer.OnCallComplete(RPCCallEvent{
		Service:   service,
		Method:    method,
		Model:     model,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(mapped),
	})
	return nil, mapped
}

func (c *Client) doRequest(ctx context.Context, url string, body rpcRequest) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRemote, httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var resp rpcResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if resp.Error != nil {
		return nil, mapRemoteError(resp.Error)
	}
	return resp.Result, nil
}

// mapRemoteError turns an Odoo fault payload into a taxonomy error.
// The attendance module raises a UserError mentioning the missing open
// record when a check-out has nothing to close.
func mapRemoteError(e *rpcError) error {
	msg := e.Data.Message
	if msg == "" {
		msg = e.Message
	}
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "no open attendance") || strings.Contains(lower, "registro de entrada abierto") {
		return fmt.Errorf("%w: %s", ErrNoOpenRecord, msg)
	}
	if strings.Contains(lower, "access denied") || strings.Contains(lower, "accessdenied") {
		return fmt.Errorf("%w: %s", ErrAuthFailed, msg)
	}
	return fmt.Errorf("%w: %s", ErrRemote, msg)
}

func mapTransportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ErrTimeout
	}
	if isConnectionError(err) {
		return ErrUnavailable
	}
	return err
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func stageLabel(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	// Odoo encodes many2one fields as [id, label], or false when unset.
	var tuple []any
	if err := json.Unmarshal(raw, &tuple); err == nil && len(tuple) == 2 {
		if label, ok := tuple[1].(string); ok {
			return label
		}
	}
	return ""
}
