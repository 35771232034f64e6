package client

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

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"

	"go.uber.org/zap"
)

// APIClient talks to the staff service that owns shifts and worklogs
type APIClient struct {
	baseURL     string
	accessToken string
	clientCode  string
	deviceID    string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, accessToken, clientCode string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		clientCode:  clientCode,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SetDeviceID sets the device identifier sent with every request
func (c *APIClient) SetDeviceID(deviceID string) {
	c.deviceID = deviceID
}

type envelope[T any] struct {
	Result T `json:"result"`
}

type idResult struct {
	ID string `json:"id"`
}

// OpenShift opens (or reopens) the shift of the authenticated user
func (c *APIClient) OpenShift(ctx context.Context, params *models.ShiftParams) (string, error) {
	var out envelope[idResult]
	if err := c.do(ctx, http.MethodPost, "/shift-open", nil, bodyOrEmpty(params), &out); err != nil {
		return "", err
	}
	return out.Result.ID, nil
}

// CloseShift closes the shift of the authenticated user
func (c *APIClient) CloseShift(ctx context.Context, params *models.ShiftParams) (string, error) {
	var out envelope[idResult]
	if err := c.do(ctx, http.MethodPost, "/shift-close", nil, bodyOrEmpty(params), &out); err != nil {
		return "", err
	}
	return out.Result.ID, nil
}

// ListShifts lists shifts matching filter
func (c *APIClient) ListShifts(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, error) {
	query := url.Values{}
	setFilter(query, "id", filter.ID)
	setFilter(query, "userId", filter.UserID)
	setFilter(query, "status", string(filter.Status))

	var out envelope[[]models.Shift]
	if err := c.do(ctx, http.MethodGet, "/shift", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// PostWorkLog creates or updates a single worklog
func (c *APIClient) PostWorkLog(ctx context.Context, delta models.WorkLogDelta) (*models.WorkLogResult, error) {
	var out envelope[models.WorkLogResult]
	if err := c.do(ctx, http.MethodPost, "/work-log", nil, delta, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// PostWorkLogs creates or updates several worklogs in one call
func (c *APIClient) PostWorkLogs(ctx context.Context, deltas []models.WorkLogDelta) (*models.WorkLogResult, error) {
	if len(deltas) == 0 {
		return nil, fmt.Errorf("cannot send empty batch")
	}

	var out envelope[models.WorkLogResult]
	if err := c.do(ctx, http.MethodPost, "/work-log", nil, deltas, &out); err != nil {
		return nil, err
	}
	c.logger.Info("Worklog batch sent successfully", zap.Int("count", len(deltas)))
	return &out.Result, nil
}

// ListWorkLogs lists worklogs matching filter
func (c *APIClient) ListWorkLogs(ctx context.Context, filter models.WorkLogFilter) ([]models.WorkLog, error) {
	query := url.Values{}
	setFilter(query, "shiftId", filter.ShiftID)
	for _, status := range filter.Statuses {
		query.Add("filters[status]", string(status))
	}

	var out envelope[[]models.WorkLog]
	if err := c.do(ctx, http.MethodGet, "/work-log", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// ListWorkLogTypes lists the activity kinds matching filter
func (c *APIClient) ListWorkLogTypes(ctx context.Context, filter models.WorkLogTypeFilter) ([]models.WorkLogType, error) {
	query := url.Values{}
	setFilter(query, "status", filter.Status)
	for _, typ := range filter.Types {
		query.Add("filters[type]", typ)
	}
	if filter.IsInternal != nil {
		query.Set("filters[isInternal]", strconv.FormatBool(*filter.IsInternal))
	}

	var out envelope[[]models.WorkLogType]
	if err := c.do(ctx, http.MethodGet, "/work-log-type", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// GetGlobalSetting reads the global staff settings
func (c *APIClient) GetGlobalSetting(ctx context.Context) (*models.GlobalSetting, error) {
	var out envelope[models.GlobalSetting]
	if err := c.do(ctx, http.MethodGet, "/setting/global", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if c.clientCode != "" {
		req.Header.Set("janis-client", c.clientCode)
	}
	if c.deviceID != "" {
		req.Header.Set("janis-device-id", c.deviceID)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Request to staff service failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return &RemoteServiceError{Endpoint: path, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteServiceError{Endpoint: path, StatusCode: resp.StatusCode, Message: "failed to read response: " + err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rerr := newRemoteServiceError(path, resp.StatusCode, respBody)
		switch {
		case rerr.IsAuthError():
			c.logger.Error("Authentication failed",
				zap.String("path", path),
				zap.Int("status_code", resp.StatusCode),
			)
		case resp.StatusCode == http.StatusTooManyRequests:
			c.logger.Warn("Rate limited",
				zap.String("path", path),
				zap.Int("status_code", resp.StatusCode),
			)
		default:
			c.logger.Error("Staff service error",
				zap.String("path", path),
				zap.Int("status_code", resp.StatusCode),
				zap.String("response", string(respBody)),
			)
		}
		return rerr
	}

	c.logger.Debug("Staff service request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &RemoteServiceError{Endpoint: path, StatusCode: resp.StatusCode, Message: "failed to parse response: " + err.Error(), Err: err}
	}
	return nil
}

func setFilter(query url.Values, name, value string) {
	if value != "" {
		query.Set("filters["+name+"]", value)
	}
}

func bodyOrEmpty(params *models.ShiftParams) any {
	if params == nil {
		return struct{}{}
	}
	return params
}
