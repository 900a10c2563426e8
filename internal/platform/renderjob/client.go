// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

/*
Package renderjob talks to the external asynchronous render service that
performs the actual image/3D generation.

Job lifecycle: submit → poll status → fetch output. The service exposes a
run endpoint returning a job ID and a status endpoint reporting one of
IN_QUEUE / IN_PROGRESS / COMPLETED / FAILED.

The last observed status of every job is mirrored into Redis with a short
TTL so API clients can query generation progress without hitting the render
service themselves.
*/
package renderjob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pixagen/pixagen/internal/platform/apperr"
	"github.com/pixagen/pixagen/internal/platform/constants"
)

// Job terminal states reported by the render service.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// statusCacheTTL bounds how long a mirrored job status lives in Redis.
const statusCacheTTL = 10 * time.Minute

// JobOutput is the payload returned by a completed render job.
type JobOutput struct {
	ImageKey string `json:"image_key"`
	ImageURL string `json:"image_url"`
}

// Runner is the contract consumed by the generation service.
type Runner interface {
	// Submit enqueues a generation job and returns its ID.
	Submit(ctx context.Context, prompt, referenceKey string) (string, error)

	// Await polls the job until it reaches a terminal state or ctx is cancelled.
	Await(ctx context.Context, jobID string) (*JobOutput, error)

	// CachedStatus reports the last status mirrored into the cache for the
	// job, or an empty string when nothing is cached.
	CachedStatus(ctx context.Context, jobID string) (string, error)
}

// Config holds the render-service connection settings.
type Config struct {
	// BaseURL is the service root (e.g. https://api.runpod.ai/v2).
	BaseURL string
	// EndpointID selects the deployed model endpoint.
	EndpointID string
	// APIKey is sent in the Authorization header of every call.
	APIKey string
	// PollInterval is the delay between status polls. Zero means 2s.
	PollInterval time.Duration
}

// Client implements [Runner] against the HTTP render service.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *redis.Client
	logger     *slog.Logger
}

// NewClient builds a render-job client.
//
// # Parameters
//   - cfg: Service connection settings.
//   - cache: Optional Redis client for status mirroring (nil disables it).
//   - logger: Structured logger for job lifecycle events.
func NewClient(cfg Config, cache *redis.Client, logger *slog.Logger) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:  cache,
		logger: logger,
	}
}

// submitRequest is the JSON body of a run call.
type submitRequest struct {
	Input submitInput `json:"input"`
}

type submitInput struct {
	Prompt   string `json:"prompt"`
	ImageKey string `json:"image_key,omitempty"`
}

// submitResponse is the JSON body returned by a run call.
type submitResponse struct {
	ID string `json:"id"`
}

// statusResponse is the JSON body returned by a status call.
type statusResponse struct {
	Status string     `json:"status"`
	Output *JobOutput `json:"output"`
	Error  string     `json:"error,omitempty"`
}

// Submit enqueues a generation job and returns its ID.
func (client *Client) Submit(ctx context.Context, prompt, referenceKey string) (string, error) {
	payload, err := json.Marshal(submitRequest{Input: submitInput{
		Prompt:   prompt,
		ImageKey: referenceKey,
	}})
	if err != nil {
		return "", fmt.Errorf("renderjob: marshal submit payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/run", client.config.BaseURL, client.config.EndpointID)
	body, err := client.call(ctx, http.MethodPost, url, payload)
	if err != nil {
		return "", err
	}

	var response submitResponse
	if err := json.Unmarshal(body, &response); err != nil || response.ID == "" {
		return "", apperr.BadGateway("Render service returned an invalid response", err)
	}

	client.logger.InfoContext(ctx, "render_job_submitted", slog.String("job_id", response.ID))
	return response.ID, nil
}

// status fetches the current job state and mirrors it into the cache.
func (client *Client) status(ctx context.Context, jobID string) (*statusResponse, error) {
	url := fmt.Sprintf("%s/%s/status/%s", client.config.BaseURL, client.config.EndpointID, jobID)
	body, err := client.call(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var response statusResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, apperr.BadGateway("Render service returned an invalid response", err)
	}

	client.cacheStatus(ctx, jobID, response.Status)
	return &response, nil
}

// Await polls the job until it completes, fails, or ctx is cancelled.
//
// # Cancellation
//
// The loop selects on ctx.Done() between polls, so a cancelled request
// (client disconnect, timeout middleware) aborts promptly without leaking
// the goroutine or the ticker.
func (client *Client) Await(ctx context.Context, jobID string) (*JobOutput, error) {
	ticker := time.NewTicker(client.config.PollInterval)
	defer ticker.Stop()

	for {
		status, err := client.status(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case StatusCompleted:
			if status.Output == nil {
				return nil, apperr.BadGateway("Render job completed without output", nil)
			}
			client.logger.InfoContext(ctx, "render_job_completed", slog.String("job_id", jobID))
			return status.Output, nil

		case StatusFailed:
			client.logger.WarnContext(ctx, "render_job_failed",
				slog.String("job_id", jobID),
				slog.String("error", status.Error),
			)
			return nil, apperr.BadGateway("Render job failed", nil)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// CachedStatus returns the last status mirrored into Redis for the job,
// or an empty string when nothing is cached.
func (client *Client) CachedStatus(ctx context.Context, jobID string) (string, error) {
	if client.cache == nil {
		return "", nil
	}

	status, err := client.cache.Get(ctx, constants.RedisPrefixJobStatus+jobID).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("renderjob: status cache read failed: %w", err)
	}
	return status, nil
}

// cacheStatus mirrors the job status into Redis. Failures are logged, never fatal.
func (client *Client) cacheStatus(ctx context.Context, jobID, status string) {
	if client.cache == nil || status == "" {
		return
	}

	key := constants.RedisPrefixJobStatus + jobID
	if err := client.cache.Set(ctx, key, status, statusCacheTTL).Err(); err != nil {
		client.logger.WarnContext(ctx, "render_job_status_cache_failed",
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
	}
}

// call performs one HTTP round trip with the service API key attached.
func (client *Client) call(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("renderjob: build request: %w", err)
	}

	request.Header.Set("Authorization", client.config.APIKey)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, apperr.BadGateway("Render service is unreachable", err)
	}
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, apperr.BadGateway("Render service response could not be read", err)
	}

	if response.StatusCode >= 400 {
		return nil, apperr.BadGateway(
			fmt.Sprintf("Render service returned HTTP %d", response.StatusCode), nil)
	}

	return body, nil
}
