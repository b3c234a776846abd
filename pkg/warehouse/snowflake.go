package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/killallgit/cortex-chat/pkg/config"
	"github.com/killallgit/cortex-chat/pkg/logger"
	"github.com/tidwall/gjson"
)

const statementsPath = "/api/v2/statements"

// Authorizer decorates outgoing requests with session credentials
type Authorizer interface {
	Authorize(ctx context.Context, req *http.Request) error
	HTTPClient() *http.Client
}

// SnowflakeExecutor runs statements through the SQL REST API on the same
// authenticated session the agent client uses
type SnowflakeExecutor struct {
	baseURL      string
	session      Authorizer
	cfg          config.WarehouseConfig
	pollInterval time.Duration
}

// NewSnowflakeExecutor creates an executor for the account base URL
func NewSnowflakeExecutor(baseURL string, session Authorizer, cfg config.WarehouseConfig) *SnowflakeExecutor {
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	return &SnowflakeExecutor{
		baseURL:      baseURL,
		session:      session,
		cfg:          cfg,
		pollInterval: poll,
	}
}

type statementRequest struct {
	Statement string `json:"statement"`
	Timeout   int    `json:"timeout,omitempty"`
	Database  string `json:"database,omitempty"`
	Schema    string `json:"schema,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Query submits the statement, waits for asynchronous completion and
// collects every result partition
func (e *SnowflakeExecutor) Query(ctx context.Context, sql string) (*Result, error) {
	statement := PrepareStatement(sql)
	log := logger.WithComponent("warehouse")
	start := time.Now()

	body, err := json.Marshal(statementRequest{
		Statement: statement,
		Timeout:   int(e.cfg.Timeout / time.Second),
		Database:  e.cfg.Database,
		Schema:    e.cfg.Schema,
		Warehouse: e.cfg.Name,
		Role:      e.cfg.Role,
	})
	if err != nil {
		return nil, &QueryError{SQL: statement, Err: fmt.Errorf("failed to marshal statement: %w", err)}
	}

	endpoint := e.baseURL + statementsPath + "?" + url.Values{"requestId": {uuid.NewString()}}.Encode()
	status, payload, err := e.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, &QueryError{SQL: statement, Err: err}
	}

	for status == http.StatusAccepted {
		handle := gjson.GetBytes(payload, "statementHandle").String()
		if handle == "" {
			return nil, &QueryError{SQL: statement, Message: "asynchronous statement without handle"}
		}

		select {
		case <-ctx.Done():
			return nil, &QueryError{SQL: statement, Err: ctx.Err()}
		case <-time.After(e.pollInterval):
		}

		status, payload, err = e.do(ctx, http.MethodGet, e.statementURL(handle, -1), nil)
		if err != nil {
			return nil, &QueryError{SQL: statement, Err: err}
		}
	}

	if status != http.StatusOK {
		queryErr := statementError(statement, status, payload)
		log.Error("Statement failed", "status", status, "code", queryErr.Code, "duration", time.Since(start))
		return nil, queryErr
	}

	result := &Result{Columns: columnNames(payload)}
	result.Rows = appendRows(result.Rows, payload)

	// The first response carries partition 0; the rest are fetched by handle
	partitions := gjson.GetBytes(payload, "resultSetMetaData.partitionInfo.#").Int()
	handle := gjson.GetBytes(payload, "statementHandle").String()
	for p := 1; p < int(partitions); p++ {
		status, part, err := e.do(ctx, http.MethodGet, e.statementURL(handle, p), nil)
		if err != nil {
			return nil, &QueryError{SQL: statement, Err: err}
		}
		if status != http.StatusOK {
			return nil, statementError(statement, status, part)
		}
		result.Rows = appendRows(result.Rows, part)
	}

	log.Debug("Statement complete", "rows", len(result.Rows), "partitions", partitions, "duration", time.Since(start))
	return result, nil
}

func (e *SnowflakeExecutor) statementURL(handle string, partition int) string {
	u := e.baseURL + statementsPath + "/" + url.PathEscape(handle)
	if partition >= 0 {
		u += fmt.Sprintf("?partition=%d", partition)
	}
	return u
}

func (e *SnowflakeExecutor) do(ctx context.Context, method, endpoint string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if err := e.session.Authorize(ctx, req); err != nil {
		return 0, nil, fmt.Errorf("failed to authorize request: %w", err)
	}

	resp, err := e.session.HTTPClient().Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, payload, nil
}

func statementError(statement string, status int, payload []byte) *QueryError {
	message := gjson.GetBytes(payload, "message").String()
	if message == "" {
		message = fmt.Sprintf("%d %s", status, http.StatusText(status))
	}
	return &QueryError{
		SQL:      statement,
		Code:     gjson.GetBytes(payload, "code").String(),
		SQLState: gjson.GetBytes(payload, "sqlState").String(),
		Message:  message,
	}
}

func columnNames(payload []byte) []string {
	var columns []string
	gjson.GetBytes(payload, "resultSetMetaData.rowType.#.name").ForEach(func(_, name gjson.Result) bool {
		columns = append(columns, name.String())
		return true
	})
	return columns
}

func appendRows(rows [][]string, payload []byte) [][]string {
	gjson.GetBytes(payload, "data").ForEach(func(_, row gjson.Result) bool {
		var values []string
		row.ForEach(func(_, v gjson.Result) bool {
			if v.Type == gjson.Null {
				values = append(values, NullValue)
			} else {
				values = append(values, v.String())
			}
			return true
		})
		rows = append(rows, values)
		return true
	})
	return rows
}
