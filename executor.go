package sfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Client performs the raw requests of each operation. Implementations return
// *APIError for non-2xx replies.
type Client interface {
	Put(ctx context.Context, target Target, localPath string) (*Response, error)
	Get(ctx context.Context, target Target, localPath string) (*Response, error)
	Delete(ctx context.Context, target Target) (*Response, error)
	ListFiles(ctx context.Context, target Target) (*Response, error)
	ListContexts(ctx context.Context) (*Response, error)
}

// Executor dispatches one invocation to its request and shapes the result.
type Executor struct {
	client Client
	logger *slog.Logger
}

// NewExecutor returns an Executor backed by client. A nil logger uses
// slog.Default.
func NewExecutor(client Client, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{client: client, logger: logger}
}

// Execute performs exactly one operation.
func (e *Executor) Execute(ctx context.Context, inv Invocation) (*Result, error) {
	log := e.logger.With(
		"method", inv.Operation,
		"org", inv.Target.Org,
		"context", inv.Target.Context,
		"name", inv.Target.Name,
	)
	log.Debug("executing operation", "credentials", inv.Credentials, "local_path", inv.LocalPath)

	result, err := e.dispatch(ctx, inv)
	if err != nil {
		log.Debug("operation failed", "err", err)
		return nil, err
	}
	log.Debug("operation succeeded", "code", result.Code, "changed", result.Changed)
	return result, nil
}

func (e *Executor) dispatch(ctx context.Context, inv Invocation) (*Result, error) {
	t := inv.Target

	switch inv.Operation {
	case OpPut:
		resp, err := e.client.Put(ctx, t, inv.LocalPath)
		if err != nil {
			return nil, err
		}
		return jsonResult(resp, true, func(r *Result, body json.RawMessage) { r.Response = body })

	case OpGet:
		resp, err := e.client.Get(ctx, t, inv.LocalPath)
		if err != nil {
			return nil, err
		}
		return &Result{Changed: true, Code: resp.StatusCode}, nil

	case OpDelete:
		resp, err := e.client.Delete(ctx, t)
		if err != nil {
			return nil, err
		}
		return jsonResult(resp, true, func(r *Result, body json.RawMessage) { r.Response = body })

	case OpListFiles:
		resp, err := e.client.ListFiles(ctx, t)
		if err != nil {
			return nil, err
		}
		return jsonResult(resp, false, func(r *Result, body json.RawMessage) { r.Listing = body })

	case OpFileMostRecent:
		resp, err := e.client.ListFiles(ctx, t)
		if err != nil {
			return nil, err
		}
		return mostRecentResult(resp)

	case OpListContexts:
		resp, err := e.client.ListContexts(ctx)
		if err != nil {
			return nil, err
		}
		return jsonResult(resp, false, func(r *Result, body json.RawMessage) { r.Listing = body })

	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidOperation, inv.Operation)
	}
}

// jsonResult validates the success body as JSON and stores it via set.
// An empty body is reported as JSON null.
func jsonResult(resp *Response, changed bool, set func(*Result, json.RawMessage)) (*Result, error) {
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 {
		body = []byte("null")
	}
	if !json.Valid(body) {
		return nil, responseError(resp, fmt.Errorf("%w: not JSON", ErrInvalidResponse))
	}

	r := &Result{Changed: changed, Code: resp.StatusCode}
	set(r, json.RawMessage(body))
	return r, nil
}

func mostRecentResult(resp *Response) (*Result, error) {
	records, err := ParseListing(resp.Body)
	if err != nil {
		return nil, responseError(resp, fmt.Errorf("%w: %v", ErrInvalidResponse, err))
	}
	latest, err := MostRecent(records)
	if err != nil {
		return nil, responseError(resp, err)
	}
	return &Result{Changed: false, Code: resp.StatusCode, FileMostRecent: latest.Raw}, nil
}

func responseError(resp *Response, err error) *ResponseError {
	return &ResponseError{
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
		URL:        resp.URL,
		Err:        err,
	}
}
