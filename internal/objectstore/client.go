package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"pipelinq/internal/config"
	"pipelinq/internal/constants"
	"pipelinq/internal/logger"
	"pipelinq/pkg/circuitbreaker"
	"pipelinq/pkg/errors"
	"pipelinq/pkg/metrics"
	"pipelinq/pkg/retry"
)

const objectsPath = "/api/objects"

type listResponse struct {
	Results []Object `json:"results"`
}

// Client is the REST implementation of Store. Every request goes through a
// circuit breaker and is retried with exponential backoff; 4xx answers are
// not retried.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	breaker  *circuitbreaker.Wrapper
	policy   retry.Policy
	logger   logger.Logger
}

func NewClient(cfg config.ObjectStoreConfig, cbCfg config.CircuitBreakerConfig, log logger.Logger) *Client {
	timeout := constants.DefaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: timeout},
		breaker:  circuitbreaker.New("object-store", cbCfg),
		policy:   retry.PolicyFromConfig(cfg.Retry),
		logger:   log,
	}
}

func (c *Client) FindObject(ctx context.Context, register, schema, id string) (Object, error) {
	endpoint := c.objectsURL(register, schema, id)

	var obj Object
	err := c.do(ctx, "find_object", http.MethodGet, endpoint, nil, &obj)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *Client) FindAll(ctx context.Context, q Query) ([]Object, error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("_limit", strconv.Itoa(q.Limit))
	}
	for k, v := range q.Filters {
		params.Set(k, v)
	}

	endpoint := c.objectsURL(q.Register, q.Schema, "")
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var resp listResponse
	if err := c.do(ctx, "find_all", http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) SaveObject(ctx context.Context, register, schema string, data Object) (Object, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal object: %w", err)
	}

	method, endpoint := http.MethodPost, c.objectsURL(register, schema, "")
	if id := data.ID(); id != "" {
		method, endpoint = http.MethodPut, c.objectsURL(register, schema, id)
	}

	var saved Object
	if err := c.do(ctx, "save_object", method, endpoint, body, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (c *Client) objectsURL(register, schema, id string) string {
	parts := []string{c.baseURL + objectsPath, url.PathEscape(register), url.PathEscape(schema)}
	if id != "" {
		parts = append(parts, url.PathEscape(id))
	}
	return strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, operation, method, endpoint string, body []byte, out interface{}) error {
	start := time.Now()

	err := retry.RetryWithCallback(ctx, c.policy, func() error {
		// 4xx answers do not count as breaker failures.
		var clientErr error
		err := c.breaker.Do(ctx, func() error {
			err := c.roundTrip(ctx, method, endpoint, body, out)
			if errors.IsNotFound(err) || errors.IsValidation(err) {
				clientErr = err
				return nil
			}
			return err
		})
		if err != nil {
			return err
		}
		return clientErr
	}, func(attempt int, err error, next time.Duration) {
		c.logger.WarnwCtx(ctx, "Object store request failed, retrying",
			"operation", operation,
			"attempt", attempt,
			"next_delay", next,
			"error", err,
		)
	})

	metrics.ObserveObjectStoreRequest(operation, time.Since(start), err)
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return retry.NewFatalError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("object store request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrObjectNotFound.WithDetail("url", endpoint)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return errors.ErrValidation.
			WithMessage(fmt.Sprintf("object store rejected request: %d", resp.StatusCode))
	case resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax:
		return errors.ErrServiceUnavailable.
			WithMessage(fmt.Sprintf("object store returned status: %d", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return retry.NewFatalError(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
