package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/auth"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
)

const idempotencyTTL = 24 * time.Hour

type orderLineDTO struct {
	ID        string       `json:"id"`
	ProductID string       `json:"product_id"`
	SKU       string       `json:"sku"`
	Name      string       `json:"name"`
	Price     domain.Money `json:"price"`
	Qty       int32        `json:"qty"`
	Subtotal  domain.Money `json:"subtotal"`
}

type orderDTO struct {
	ID        string         `json:"id"`
	User      string         `json:"user"`
	Status    string         `json:"status"`
	Total     domain.Money   `json:"total"`
	Items     []orderLineDTO `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type checkoutResponse struct {
	orderDTO
	CartCleared bool `json:"cartCleared"`
}

func toOrderDTO(order domain.Order) orderDTO {
	items := make([]orderLineDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, orderLineDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			SKU:       line.SKU,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Qty:       line.Qty,
			Subtotal:  line.Subtotal,
		})
	}
	return orderDTO{
		ID:        order.ID,
		User:      order.Customer,
		Status:    string(order.Status),
		Total:     order.Total,
		Items:     items,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

// OrderHandler обслуживает HTTP API сервиса заказов.
type OrderHandler struct {
	orchestrator *checkout.Orchestrator
	ledger       domain.OrderRepository
	idempotency  domain.IdempotencyRepository
	logger       *log.Entry
}

// NewOrderHandler создаёт обработчик. idempotency может быть nil —
// тогда заголовок Idempotency-Key игнорируется.
func NewOrderHandler(
	orchestrator *checkout.Orchestrator,
	ledger domain.OrderRepository,
	idempotency domain.IdempotencyRepository,
	logger *log.Entry,
) *OrderHandler {
	if logger == nil {
		logger = log.New().WithField("component", "order-handler")
	}
	return &OrderHandler{
		orchestrator: orchestrator,
		ledger:       ledger,
		idempotency:  idempotency,
		logger:       logger,
	}
}

// NewOrderRouter собирает маршруты сервиса заказов.
func NewOrderRouter(handler *OrderHandler, issuer *auth.TokenIssuer) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(handler.logger))

	r.Group(func(r chi.Router) {
		r.Use(Authenticator(issuer))

		r.Post("/orders/checkout", handler.Checkout)
		r.Get("/orders", handler.ListMine)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/orders/all", handler.ListAll)
			r.Post("/orders/{orderID}/cancel", handler.Cancel)
		})

		r.Get("/orders/{orderID}", handler.Get)
	})

	return r
}

// Checkout запускает оформление заказа. При наличии заголовка
// Idempotency-Key результат первой попытки сохраняется и повторяется
// для последующих запросов с тем же ключом.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if key == "" || h.idempotency == nil {
		status, body := h.runCheckout(r, claims)
		writeRaw(w, status, body)
		return
	}

	requestHash := checkoutRequestHash(r.Method, r.URL.Path, claims.Subject)

	record, err := h.idempotency.CreateProcessing(key, requestHash, time.Now().UTC().Add(idempotencyTTL))
	switch {
	case err == nil:
		status, body := h.runCheckout(r, claims)
		h.storeIdempotentResult(key, status, body)
		writeRaw(w, status, body)
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		writeDetail(w, http.StatusConflict, "Idempotency key is already used with a different request")
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		h.replayIdempotentResult(w, record)
	default:
		writeError(w, h.logger, err)
	}
}

func (h *OrderHandler) runCheckout(r *http.Request, claims auth.Claims) (int, []byte) {
	result, err := h.orchestrator.Checkout(r.Context(), claims.Subject, bearerFrom(r.Context()))
	if err != nil {
		status := statusFor(err)
		detail, ok := domain.DetailOf(err)
		if !ok {
			detail = "Internal server error"
		}
		body, _ := json.Marshal(detailResponse{Detail: detail})
		return status, body
	}

	body, err := json.Marshal(checkoutResponse{
		orderDTO:    toOrderDTO(result.Order),
		CartCleared: result.CartCleared,
	})
	if err != nil {
		h.logger.WithError(err).Error("marshal checkout response")
		body, _ = json.Marshal(detailResponse{Detail: "Internal server error"})
		return http.StatusInternalServerError, body
	}
	return http.StatusOK, body
}

func (h *OrderHandler) storeIdempotentResult(key string, status int, body []byte) {
	var err error
	if status < http.StatusBadRequest {
		err = h.idempotency.MarkDone(key, body, status)
	} else {
		err = h.idempotency.MarkFailed(key, body, status)
	}
	if err != nil {
		h.logger.WithError(err).WithField("key", key).Warn("failed to store idempotent result")
	}
}

func (h *OrderHandler) replayIdempotentResult(w http.ResponseWriter, record domain.IdempotencyRecord) {
	if record.Status == domain.IdempotencyStatusProcessing {
		writeDetail(w, http.StatusConflict, "Request is already being processed")
		return
	}
	writeRaw(w, record.HTTPStatus, record.ResponseBody)
}

// ListMine возвращает заказы аутентифицированного покупателя.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	orders, err := h.ledger.ListByCustomer(claims.Subject, 0)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result := make([]orderDTO, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderDTO(order))
	}
	writeJSON(w, http.StatusOK, result)
}

// ListAll возвращает заказы по административному фильтру.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	filter := domain.OrderFilter{
		Status:   domain.OrderStatus(r.URL.Query().Get("status")),
		Customer: r.URL.Query().Get("user"),
	}

	orders, err := h.ledger.ListAll(filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result := make([]orderDTO, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderDTO(order))
	}
	writeJSON(w, http.StatusOK, result)
}

// Get возвращает заказ. Чужой заказ для обычного пользователя
// неотличим от несуществующего.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	orderID := chi.URLParam(r, "orderID")

	order, err := h.ledger.Get(orderID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if claims.Role != domain.RoleAdmin && order.Customer != claims.Subject {
		writeDetail(w, http.StatusNotFound, "Order not found")
		return
	}

	writeJSON(w, http.StatusOK, toOrderDTO(order))
}

// Cancel переводит заказ в canceled (admin-only, идемпотентно).
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, err := h.ledger.Cancel(orderID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderDTO(order))
}

func checkoutRequestHash(method, path, identity string) string {
	sum := sha256.Sum256([]byte(method + "|" + path + "|" + identity))
	return hex.EncodeToString(sum[:])
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
