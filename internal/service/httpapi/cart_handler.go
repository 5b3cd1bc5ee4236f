package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/auth"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type cartDTO struct {
	User  string           `json:"user"`
	Items map[string]int32 `json:"items"`
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

// CartHandler обслуживает HTTP API корзины и журнала сводок заказов.
type CartHandler struct {
	carts  domain.CartRepository
	logger *log.Entry
}

// NewCartHandler создаёт обработчик корзины.
func NewCartHandler(carts domain.CartRepository, logger *log.Entry) *CartHandler {
	if logger == nil {
		logger = log.New().WithField("component", "cart-handler")
	}
	return &CartHandler{carts: carts, logger: logger}
}

// NewCartRouter собирает маршруты корзины. Все операции требуют
// аутентификации: корзина всегда принадлежит субъекту токена.
func NewCartRouter(handler *CartHandler, issuer *auth.TokenIssuer) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(handler.logger))

	r.Group(func(r chi.Router) {
		r.Use(Authenticator(issuer))

		r.Get("/cart", handler.Get)
		r.Post("/cart/clear", handler.Clear)
		r.Post("/cart/add", handler.Add)
		r.Put("/cart/items/{productID}", handler.Set)
		r.Delete("/cart/items/{productID}", handler.Remove)

		r.Post("/cart/orders", handler.AppendOrder)
		r.Get("/cart/orders", handler.ListOrders)
		r.Get("/cart/orders/{orderID}", handler.GetOrder)
	})

	return r
}

// Get возвращает содержимое корзины покупателя.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	items, err := h.carts.Items(claims.Subject)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, cartDTO{User: claims.Subject, Items: items})
}

// Add увеличивает количество товара в корзине.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil || req.ProductID == "" {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.carts.Add(claims.Subject, req.ProductID, req.Qty); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondWithCart(w, claims.Subject)
}

// Set выставляет количество товара; qty <= 0 удаляет позицию.
func (h *CartHandler) Set(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	productID := chi.URLParam(r, "productID")

	var req struct {
		Qty int32 `json:"qty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.carts.Set(claims.Subject, productID, req.Qty); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondWithCart(w, claims.Subject)
}

// Remove удаляет позицию из корзины.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	productID := chi.URLParam(r, "productID")

	if err := h.carts.Remove(claims.Subject, productID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondWithCart(w, claims.Subject)
}

// Clear очищает корзину целиком.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	if err := h.carts.Clear(claims.Subject); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// AppendOrder принимает сводку заказа от оркестратора и дописывает её
// в журнал покупателя. Тело хранится как есть, без пересборки.
func (h *CartHandler) AppendOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var summary struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}

	if err := h.carts.AppendOrder(claims.Subject, summary.ID, body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": summary.ID})
}

// ListOrders возвращает журнал сводок покупателя, новые первыми.
func (h *CartHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	summaries, err := h.carts.ListOrders(claims.Subject)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result := make([]json.RawMessage, 0, len(summaries))
	for _, summary := range summaries {
		result = append(result, json.RawMessage(summary))
	}
	writeJSON(w, http.StatusOK, result)
}

// GetOrder возвращает сводку по ID заказа.
func (h *CartHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	summary, err := h.carts.GetOrder(orderID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeRaw(w, http.StatusOK, summary)
}

func (h *CartHandler) respondWithCart(w http.ResponseWriter, identity string) {
	items, err := h.carts.Items(identity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cartDTO{User: identity, Items: items})
}
