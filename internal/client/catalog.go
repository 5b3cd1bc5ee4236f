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

// CatalogClient — HTTP-клиент каталога. Чтение публичное, запись остатка
// идёт с сервисным токеном.
type CatalogClient struct {
	baseURL string
	http    *http.Client
	logger  *log.Entry
}

// NewCatalogClient создаёт клиент с таймаутом по умолчанию.
func NewCatalogClient(baseURL string, logger *log.Entry) *CatalogClient {
	if logger == nil {
		logger = log.New().WithField("component", "catalog-client")
	}
	return &CatalogClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
		logger:  logger,
	}
}

type productResponse struct {
	ID          string       `json:"id"`
	SKU         string       `json:"sku"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       domain.Money `json:"price"`
	Stock       int32        `json:"stock"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Quote возвращает свежие данные товара.
func (c *CatalogClient) Quote(ctx context.Context, productID string) (domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products/"+productID, nil)
	if err != nil {
		return domain.Product{}, fmt.Errorf("build product request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("catalog request failed")
		return domain.Product{}, domain.Detailf(domain.ErrUpstreamUnavailable, "catalog unavailable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Product{}, domain.Detailf(domain.ErrProductNotFound, "Product %s not found", productID)
	case resp.StatusCode != http.StatusOK:
		c.logger.WithField("status", resp.StatusCode).Warn("catalog returned unexpected status")
		return domain.Product{}, domain.Detailf(domain.ErrUpstreamUnavailable, "catalog unavailable")
	}

	var payload productResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WithError(err).Warn("catalog returned malformed body")
		return domain.Product{}, domain.Detailf(domain.ErrUpstreamUnavailable, "catalog unavailable")
	}

	return domain.Product{
		ID:          payload.ID,
		SKU:         payload.SKU,
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Stock:       payload.Stock,
		IsActive:    payload.IsActive,
		CreatedAt:   payload.CreatedAt,
		UpdatedAt:   payload.UpdatedAt,
	}, nil
}

// SetStock записывает новый остаток товара от имени сервисной учётки.
func (c *CatalogClient) SetStock(ctx context.Context, serviceBearer, productID string, stock int32) error {
	body, err := json.Marshal(map[string]int32{"stock": stock})
	if err != nil {
		return fmt.Errorf("marshal stock patch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/products/"+productID, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build stock patch request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+serviceBearer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("stock patch request failed")
		return domain.Detailf(domain.ErrStockUpdate, "Stock update failed")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.WithField("status", resp.StatusCode).Error("stock patch rejected")
		return domain.Detailf(domain.ErrStockUpdate, "Stock update failed")
	}
	return nil
}

var _ domain.CatalogGateway = (*CatalogClient)(nil)
