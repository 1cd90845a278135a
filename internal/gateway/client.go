package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blues/dls/internal/apperr"
	"github.com/blues/dls/internal/config"
	"github.com/blues/dls/internal/logger"
	"github.com/blues/dls/internal/model"
)

// Client PIX支付网关客户端
// 账务核心内唯一的阻塞I/O，所有请求带超时；超时和5xx作为可重试错误上抛且不改本地状态
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// PaymentIntent 支付意向
type PaymentIntent struct {
	PaymentIntentId string `json:"payment_intent_id"` // 幂等键
	PixCopiaECola   string `json:"pix_copia_e_cola"`  // PIX复制粘贴码
	BRCode          string `json:"brcode"`            // 二维码载荷
}

// PayerInfo 付款人信息，网关侧展示用
type PayerInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Init 初始化支付网关客户端
func Init(cfg config.PaymentConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("payment gateway base_url is required")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logger.Info("Payment gateway client initialized: %s", cfg.BaseURL)
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// CreatePaymentIntent 创建支付意向，返回支付意向ID和可展示的PIX载荷
func (c *Client) CreatePaymentIntent(ctx context.Context, amount model.Money, payer PayerInfo) (*PaymentIntent, error) {
	body, err := json.Marshal(map[string]interface{}{
		"amount": amount.Round2(),
		"payer":  payer,
	})
	if err != nil {
		return nil, err
	}

	var intent PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/v1/payment-intents", body, &intent); err != nil {
		return nil, err
	}
	if intent.PaymentIntentId == "" {
		return nil, apperr.New(apperr.KindGateway, "网关返回的支付意向缺少ID")
	}
	return &intent, nil
}

// FetchStatus 查询支付意向在网关侧的原始状态串
func (c *Client) FetchStatus(ctx context.Context, paymentIntentId string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	path := fmt.Sprintf("/v1/payment-intents/%s/status", paymentIntentId)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// do 执行一次网关请求并按HTTP状态分类错误
func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 连接失败或超时，可重试
		e := apperr.Wrap(apperr.KindGateway, "支付网关请求失败", err)
		e.Retryable = true
		return e
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e := apperr.Wrap(apperr.KindGateway, "读取网关响应失败", err)
		e.Retryable = true
		return e
	}

	switch {
	case resp.StatusCode >= 500:
		e := apperr.Newf(apperr.KindGateway, "支付网关5xx: %d", resp.StatusCode)
		e.Retryable = true
		e.Context = map[string]interface{}{"status_code": resp.StatusCode}
		return e
	case resp.StatusCode == http.StatusNotFound:
		return apperr.New(apperr.KindNotFound, "支付意向在网关侧不存在")
	case resp.StatusCode >= 400:
		e := apperr.Newf(apperr.KindGateway, "支付网关4xx: %d", resp.StatusCode)
		e.Context = map[string]interface{}{"status_code": resp.StatusCode, "body": string(data)}
		return e
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return apperr.Wrap(apperr.KindGateway, "网关响应解析失败", err)
		}
	}
	return nil
}
