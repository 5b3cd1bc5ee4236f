package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// idempotencyStore — in-memory реализация IdempotencyRepository для
// тестов и запуска без базы. Повторяет контракт postgres-реализации,
// включая разрешение гонки за ключ и порядок удаления по TTL.
type idempotencyStore struct {
	mu      sync.RWMutex
	records map[string]domain.IdempotencyRecord
}

// NewIdempotencyRepository создаёт in-memory реализацию IdempotencyRepository.
func NewIdempotencyRepository() domain.IdempotencyRepository {
	return &idempotencyStore{records: make(map[string]domain.IdempotencyRecord)}
}

// CreateProcessing занимает ключ под обработку. Занятый ключ с тем же
// хешем — повтор, с другим — конфликт переиспользования.
func (s *idempotencyStore) CreateProcessing(key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	requestHash = strings.TrimSpace(requestHash)

	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}
	if requestHash == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyRequestHashRequired
	}

	now := time.Now().UTC()
	if ttlAt.IsZero() {
		ttlAt = now.Add(24 * time.Hour)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[key]; ok {
		if existing.RequestHash != requestHash {
			return copyRecord(existing), domain.ErrIdempotencyHashMismatch
		}
		return copyRecord(existing), domain.ErrIdempotencyKeyAlreadyExists
	}

	record := domain.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Status:      domain.IdempotencyStatusProcessing,
		TTLAt:       ttlAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.records[key] = record

	return copyRecord(record), nil
}

// Get возвращает запись по ключу или ErrIdempotencyKeyNotFound.
func (s *idempotencyStore) Get(key string) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	if !ok {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
	}
	return copyRecord(record), nil
}

// MarkDone фиксирует успешный ответ для повтора.
func (s *idempotencyStore) MarkDone(key string, responseBody []byte, httpStatus int) error {
	return s.markStatus(key, domain.IdempotencyStatusDone, responseBody, httpStatus)
}

// MarkFailed фиксирует неуспешный ответ: он тоже повторяется.
func (s *idempotencyStore) MarkFailed(key string, responseBody []byte, httpStatus int) error {
	return s.markStatus(key, domain.IdempotencyStatusFailed, responseBody, httpStatus)
}

// DeleteExpired удаляет записи с истёкшим TTL, старые первыми,
// не больше limit за вызов (limit<=0 — без ограничения).
func (s *idempotencyStore) DeleteExpired(before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := make([]string, 0)
	for key, record := range s.records {
		if !record.TTLAt.After(before) {
			expired = append(expired, key)
		}
	}
	// Старые первыми, как в SQL-реализации с ORDER BY ttl_at.
	sort.Slice(expired, func(i, j int) bool {
		return s.records[expired[i]].TTLAt.Before(s.records[expired[j]].TTLAt)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}

	for _, key := range expired {
		delete(s.records, key)
	}
	return len(expired), nil
}

func (s *idempotencyStore) markStatus(key string, status domain.IdempotencyStatus, responseBody []byte, httpStatus int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrIdempotencyKeyRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return domain.ErrIdempotencyKeyNotFound
	}

	record.Status = status
	record.ResponseBody = append([]byte(nil), responseBody...)
	record.HTTPStatus = httpStatus
	record.UpdatedAt = time.Now().UTC()
	s.records[key] = record

	return nil
}

func copyRecord(src domain.IdempotencyRecord) domain.IdempotencyRecord {
	dst := src
	dst.ResponseBody = append([]byte(nil), src.ResponseBody...)
	return dst
}

var _ domain.IdempotencyRepository = (*idempotencyStore)(nil)
