package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultHTTPTimeout = 5 * time.Second

// CartClient — HTTP-клиент сервиса корзины. Любой сетевой сбой или
// не-2xx ответ переводится в ErrUpstreamUnavailable: для оркестратора
// недоступная корзина неотличима от упавшей.
type CartClient struct {
	baseURL string
	http    *http.Client
	logger  *log.Entry
}

// NewCartClient создаёт клиент с таймаутом по умолчанию.
func NewCartClient(baseURL string, logger *log.Entry) *CartClient {
	if logger == nil {
		logger = log.New().WithField("component", "cart-client")
	}
	return &CartClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
		logger:  logger,
	}
}

type cartResponse struct {
	User  string           `json:"user"`
	Items map[string]int32 `json:"items"`
}

// Fetch читает снапшот корзины покупателя.
func (c *CartClient) Fetch(ctx context.Context, bearer string) (domain.CartSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cart", nil)
	if err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("build cart request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("cart request failed")
		return domain.CartSnapshot{}, domain.Detailf(domain.ErrUpstreamUnavailable, "cart unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Warn("cart returned unexpected status")
		return domain.CartSnapshot{}, domain.Detailf(domain.ErrUpstreamUnavailable, "cart unavailable")
	}

	var payload cartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WithError(err).Warn("cart returned malformed body")
		return domain.CartSnapshot{}, domain.Detailf(domain.ErrUpstreamUnavailable, "cart unavailable")
	}

	return domain.NewCartSnapshot(payload.User, payload.Items), nil
}

// Clear очищает корзину покупателя.
func (c *CartClient) Clear(ctx context.Context, bearer string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cart/clear", nil)
	if err != nil {
		return fmt.Errorf("build cart clear request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Detailf(domain.ErrUpstreamUnavailable, "cart unavailable")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return domain.Detailf(domain.ErrUpstreamUnavailable, "cart unavailable")
	}
	return nil
}

// MirrorOrder дописывает сводку заказа в журнал корзинного сервиса.
func (c *CartClient) MirrorOrder(ctx context.Context, bearer string, summary []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cart/orders", bytes.NewReader(summary))
	if err != nil {
		return fmt.Errorf("build order mirror request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Detailf(domain.ErrUpstreamUnavailable, "cart unavailable")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return domain.Detailf(domain.ErrUpstreamUnavailable, "cart unavailable")
	}
	return nil
}

var _ domain.CartGateway = (*CartClient)(nil)
