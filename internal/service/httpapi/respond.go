package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// detailResponse — единый формат тела ошибки: {"detail": "..."}.
type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// statusFor переводит доменную ошибку в HTTP-статус.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrCartQtyInvalid),
		errors.Is(err, domain.ErrNegativeStock),
		errors.Is(err, domain.ErrMoneyInvalid),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrCustomerRequired),
		errors.Is(err, domain.ErrLinesRequired),
		errors.Is(err, domain.ErrLineQtyInvalid),
		errors.Is(err, domain.ErrLinePriceInvalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrIdempotencyKeyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrProductUnavailable),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrSKUConflict),
		errors.Is(err, domain.ErrOrderAlreadyExists),
		errors.Is(err, domain.ErrIdempotencyHashMismatch),
		errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError пишет доменную ошибку клиенту. Текст для клиента берётся
// из DetailError; голый sentinel отдаёт своё сообщение, неизвестная
// ошибка прячется за generic 500.
func writeError(w http.ResponseWriter, logger *log.Entry, err error) {
	status := statusFor(err)

	detail, ok := domain.DetailOf(err)
	if !ok {
		if status == http.StatusInternalServerError {
			logger.WithError(err).Error("request failed with internal error")
			detail = "Internal server error"
		} else {
			detail = err.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithField("status", status).Error("request failed")
	}

	writeDetail(w, status, detail)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dst)
}
