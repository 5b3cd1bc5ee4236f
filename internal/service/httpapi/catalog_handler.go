package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/auth"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type productDTO struct {
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

func toProductDTO(product domain.Product) productDTO {
	return productDTO{
		ID:          product.ID,
		SKU:         product.SKU,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

type createProductRequest struct {
	SKU         string       `json:"sku"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       domain.Money `json:"price"`
	Stock       int32        `json:"stock"`
	IsActive    *bool        `json:"is_active"`
}

type patchProductRequest struct {
	SKU         *string       `json:"sku"`
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Price       *domain.Money `json:"price"`
	Stock       *int32        `json:"stock"`
	IsActive    *bool         `json:"is_active"`
}

// CatalogHandler обслуживает HTTP API каталога.
type CatalogHandler struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewCatalogHandler создаёт обработчик каталога.
func NewCatalogHandler(products domain.ProductRepository, logger *log.Entry) *CatalogHandler {
	if logger == nil {
		logger = log.New().WithField("component", "catalog-handler")
	}
	return &CatalogHandler{products: products, logger: logger}
}

// NewCatalogRouter собирает маршруты каталога. Чтение публичное,
// запись требует роли admin (в том числе для сервисного токена оркестратора).
func NewCatalogRouter(handler *CatalogHandler, issuer *auth.TokenIssuer) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(handler.logger))

	r.Get("/products", handler.List)
	r.Get("/products/{productID}", handler.Get)

	r.Group(func(r chi.Router) {
		r.Use(Authenticator(issuer))
		r.Use(RequireAdmin)

		r.Post("/products", handler.Create)
		r.Patch("/products/{productID}", handler.Patch)
		r.Delete("/products/{productID}", handler.Delete)
	})

	return r
}

// List возвращает товары по фильтру из query-параметров.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ProductFilter{Query: query.Get("q")}

	if raw := query.Get("min_price"); raw != "" {
		price, err := domain.ParseMoney(raw)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid min_price")
			return
		}
		filter.MinPrice = &price
	}
	if raw := query.Get("max_price"); raw != "" {
		price, err := domain.ParseMoney(raw)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid max_price")
			return
		}
		filter.MaxPrice = &price
	}
	// Основное имя параметра — is_active, короткое active оставлено
	// как синоним.
	raw := query.Get("is_active")
	if raw == "" {
		raw = query.Get("active")
	}
	if raw != "" {
		active := raw == "true" || raw == "1"
		filter.IsActive = &active
	}

	products, err := h.products.List(filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result := make([]productDTO, 0, len(products))
	for _, product := range products {
		result = append(result, toProductDTO(product))
	}
	writeJSON(w, http.StatusOK, result)
}

// Get возвращает товар по ID.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	product, err := h.products.Get(productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			err = domain.Detailf(domain.ErrProductNotFound, "Product %s not found", productID)
		}
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductDTO(product))
}

// Create добавляет товар в каталог.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SKU == "" || req.Name == "" {
		writeDetail(w, http.StatusBadRequest, "sku and name are required")
		return
	}
	if req.Price < 0 {
		writeDetail(w, http.StatusBadRequest, "price must be non-negative")
		return
	}
	if req.Stock < 0 {
		writeError(w, h.logger, domain.ErrNegativeStock)
		return
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          uuid.NewString(),
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.products.Create(product); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductDTO(product))
}

// Patch применяет частичное обновление товара. Остаток пишется
// абсолютным значением; отрицательное значение отклоняется.
func (h *CatalogHandler) Patch(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var req patchProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.products.Update(productID, domain.ProductPatch{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			err = domain.Detailf(domain.ErrProductNotFound, "Product %s not found", productID)
		}
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductDTO(product))
}

// Delete удаляет товар из каталога.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	if err := h.products.Delete(productID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
