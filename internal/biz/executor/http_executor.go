package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cast"
	"github.com/taskflow/scheduler/internal/biz/task"
	"go.uber.org/zap"
)

// HTTPExecutor 远程执行器：把任务描述 POST 到远端端点并等待结果
type HTTPExecutor struct {
	id         string
	baseURL    string
	healthURL  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPExecutor 创建远程执行器。healthURL 为空时默认 baseURL+"/health"。
func NewHTTPExecutor(id, baseURL, healthURL string, logger *zap.Logger) *HTTPExecutor {
	if healthURL == "" {
		healthURL = baseURL + "/health"
	}
	return &HTTPExecutor{
		id:        id,
		baseURL:   baseURL,
		healthURL: healthURL,
		httpClient: &http.Client{
			// 单次尝试的墙钟预算由调度器通过 ctx 施加，这里只兜底连接挂死
			Timeout: 30 * time.Minute,
		},
		logger: logger,
	}
}

func (e *HTTPExecutor) ID() string {
	return e.id
}

// Run 调用远端执行器并解析结果
func (e *HTTPExecutor) Run(ctx context.Context, t *task.Task, rc RunContext) (any, error) {
	payload := map[string]any{
		"execution_id":    cast.ToString(rc.ExecutionID),
		"task_id":         cast.ToString(rc.TaskID),
		"task_name":       t.Name,
		"description":     t.Description,
		"expected_output": t.ExpectedOutput,
		"parameters":      t.Parameters,
		"attempt":         rc.Attempt,
	}
	for k, v := range rc.Parameters {
		payload[k] = v
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/execute", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call executor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("executor returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read executor response: %w", err)
	}

	var out struct {
		Result any `json:"result"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &out); err != nil {
			// 非 JSON 响应按原始文本作为结果
			return string(body), nil
		}
	}

	e.logger.Debug("executor call finished",
		zap.String("executor_id", e.id),
		zap.Uint64("execution_id", rc.ExecutionID))

	return out.Result, nil
}

// Health 探测远端执行器健康端点
func (e *HTTPExecutor) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.healthURL, nil)
	if err != nil {
		return err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
