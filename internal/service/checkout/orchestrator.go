package checkout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// Phase — именованная фаза машины состояний оформления.
type Phase string

const (
	PhaseStarted        Phase = "started"
	PhaseCartLoaded     Phase = "cart_loaded"
	PhaseLinesValidated Phase = "lines_validated"
	PhaseStockReserved  Phase = "stock_reserved"
	PhaseOrderPersisted Phase = "order_persisted"
	PhaseCartCleared    Phase = "cart_cleared"
)

// Result — итог успешного оформления. CartCleared=false означает, что
// заказ записан, но корзина осталась неочищенной и требует сверки.
type Result struct {
	Order       domain.Order
	CartCleared bool
}

// Orchestrator ведёт оформление заказа как единую последовательность
// блокирующих вызовов: корзина -> каталог (два прохода) -> ledger -> корзина.
// Распределённой транзакции нет; корректность держится на порядке фаз
// и повторной проверке остатка на коммит-проходе.
type Orchestrator struct {
	ledger  domain.OrderRepository
	cart    domain.CartGateway
	catalog domain.CatalogGateway
	minter  domain.ServiceTokenMinter
	logger  *log.Entry
	metrics *metrics.CheckoutMetrics
}

// NewOrchestrator создаёт рабочий экземпляр оркестратора.
func NewOrchestrator(
	ledger domain.OrderRepository,
	cart domain.CartGateway,
	catalog domain.CatalogGateway,
	minter domain.ServiceTokenMinter,
	logger *log.Entry,
) *Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Orchestrator{
		ledger:  ledger,
		cart:    cart,
		catalog: catalog,
		minter:  minter,
		logger:  logger,
		metrics: metrics.NewCheckoutMetrics(),
	}
}

// NewOrchestratorWithoutMetrics создаёт оркестратор без метрик (для тестов).
func NewOrchestratorWithoutMetrics(
	ledger domain.OrderRepository,
	cart domain.CartGateway,
	catalog domain.CatalogGateway,
	minter domain.ServiceTokenMinter,
	logger *log.Entry,
) *Orchestrator {
	o := NewOrchestrator(ledger, cart, catalog, minter, logger)
	o.metrics = nil
	return o
}

// Checkout превращает корзину покупателя в записанный заказ.
// bearer — токен самого покупателя: им читается и чистится корзина,
// запись остатков идёт уже под сервисным токеном.
func (o *Orchestrator) Checkout(ctx context.Context, identity, bearer string) (Result, error) {
	start := time.Now()
	if o.metrics != nil {
		o.metrics.RecordStarted()
	}
	defer func() {
		if o.metrics != nil {
			o.metrics.RecordDuration(time.Since(start))
			o.metrics.RecordFinished()
		}
	}()

	result, err := o.run(ctx, identity, bearer)
	if o.metrics != nil {
		if err != nil {
			o.metrics.RecordFailed()
		} else {
			o.metrics.RecordCompleted()
		}
	}
	return result, err
}

func (o *Orchestrator) run(ctx context.Context, identity, bearer string) (Result, error) {
	logger := o.logger.WithField("identity", identity)

	snapshot, err := o.loadCart(ctx, bearer)
	if err != nil {
		logger.WithError(err).Warn("checkout aborted: cart load failed")
		return Result{}, err
	}
	logger.WithField("lines", len(snapshot.Lines)).Debug("cart snapshot loaded")

	lines, total, err := o.validateLines(ctx, snapshot)
	if err != nil {
		// Валидационный проход read-only: каталог ещё не изменён.
		logger.WithError(err).Warn("checkout aborted during validation pass")
		return Result{}, err
	}

	if err := o.reserveStock(ctx, logger, lines); err != nil {
		logger.WithError(err).Warn("checkout aborted during commit pass")
		return Result{}, err
	}

	order, err := o.persistOrder(logger, identity, lines, total)
	if err != nil {
		return Result{}, err
	}

	cleared := o.clearCart(ctx, logger, bearer, order)

	logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"total":        order.Total.String(),
		"cart_cleared": cleared,
	}).Info("checkout completed")

	return Result{Order: order, CartCleared: cleared}, nil
}

// loadCart читает снапшот корзины. Пустая корзина — терминальный отказ
// без каких-либо побочных эффектов.
func (o *Orchestrator) loadCart(ctx context.Context, bearer string) (domain.CartSnapshot, error) {
	defer o.observePhase(PhaseCartLoaded, time.Now())

	snapshot, err := o.cart.Fetch(ctx, bearer)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	if snapshot.Empty() {
		return domain.CartSnapshot{}, domain.Detailf(domain.ErrEmptyCart, "Cart is empty")
	}
	if errs := snapshot.Validate(); len(errs) > 0 {
		return domain.CartSnapshot{}, domain.Detailf(domain.ErrCartQtyInvalid, "Invalid cart contents")
	}
	return snapshot, nil
}

// validateLines — валидационный проход: для каждой позиции берётся свежая
// котировка, проверяются существование, активность и достаточность остатка.
// Цена фиксируется из котировки и позже не перечитывается.
func (o *Orchestrator) validateLines(ctx context.Context, snapshot domain.CartSnapshot) ([]domain.OrderLine, domain.Money, error) {
	defer o.observePhase(PhaseLinesValidated, time.Now())

	lines := make([]domain.OrderLine, 0, len(snapshot.Lines))
	var total domain.Money

	for _, item := range snapshot.Lines {
		quote, err := o.catalog.Quote(ctx, item.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if !quote.IsActive {
			return nil, 0, domain.Detailf(domain.ErrProductUnavailable, "%s not available", quote.Name)
		}
		if item.Qty > quote.Stock {
			return nil, 0, domain.Detailf(domain.ErrInsufficientStock, "Not enough stock for %s", quote.Name)
		}

		subtotal := quote.Price.Mul(item.Qty)
		total += subtotal
		lines = append(lines, domain.OrderLine{
			ProductID: item.ProductID,
			SKU:       quote.SKU,
			Name:      quote.Name,
			UnitPrice: quote.Price,
			Qty:       item.Qty,
			Subtotal:  subtotal,
		})
	}

	return lines, total, nil
}

// reserveStock — коммит-проход: остаток перечитывается и записывается
// заново под сервисным токеном. Между чтением и записью остаётся окно
// гонки — интерфейс каталога не даёт атомарного декремента, поэтому
// неотрицательность проверяется повторно на записи. Частично применённые
// списания при срыве посреди прохода не откатываются.
func (o *Orchestrator) reserveStock(ctx context.Context, logger *log.Entry, lines []domain.OrderLine) error {
	defer o.observePhase(PhaseStockReserved, time.Now())

	serviceToken, err := o.minter.MintServiceToken()
	if err != nil {
		logger.WithError(err).Error("failed to mint service token")
		return domain.Detailf(domain.ErrStockUpdate, "Stock update failed")
	}

	for _, line := range lines {
		current, err := o.catalog.Quote(ctx, line.ProductID)
		if err != nil {
			return err
		}
		newStock := current.Stock - line.Qty
		if newStock < 0 {
			return domain.Detailf(domain.ErrInsufficientStock, "Not enough stock for %s", current.Name)
		}
		if err := o.catalog.SetStock(ctx, serviceToken, line.ProductID, newStock); err != nil {
			return err
		}

		reservation := domain.ReservationResult{
			ProductID:      line.ProductID,
			RequestedQty:   line.Qty,
			ResultingStock: newStock,
		}
		logger.WithFields(log.Fields{
			"product_id":      reservation.ProductID,
			"qty":             reservation.RequestedQty,
			"resulting_stock": reservation.ResultingStock,
		}).Debug("stock reserved")
	}

	return nil
}

// persistOrder записывает заказ с позициями одной атомарной записью ledger.
// Неуспех здесь — самое неприятное окно: остатки уже списаны, а заказа нет.
// Откат не изобретаем, но окно явно подсвечивается метрикой и логом
// уровня Error, чтобы оператор мог компенсировать вручную.
func (o *Orchestrator) persistOrder(logger *log.Entry, identity string, lines []domain.OrderLine, total domain.Money) (domain.Order, error) {
	defer o.observePhase(PhaseOrderPersisted, time.Now())

	now := time.Now().UTC()
	order := domain.Order{
		ID:        uuid.NewString(),
		Customer:  identity,
		Status:    domain.OrderStatusPaid,
		Total:     total,
		Lines:     make([]domain.OrderLine, len(lines)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, line := range lines {
		line.ID = uuid.NewString()
		order.Lines[i] = line
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		logger.WithField("errors", errs).Error("constructed order violates invariants")
		return domain.Order{}, domain.Detailf(domain.ErrOrderPersist, "Order persist failed")
	}

	if err := o.ledger.Create(order); err != nil {
		if o.metrics != nil {
			o.metrics.RecordPersistGap()
		}
		logger.WithError(err).WithField("order_id", order.ID).
			Error("ledger write failed after stock decrement: stock is reserved without an order, manual compensation required")
		return domain.Order{}, domain.Detailf(domain.ErrOrderPersist, "Order persist failed")
	}

	return order, nil
}

// clearCart — best-effort очистка корзины и зеркалирование сводки заказа
// в журнал корзинного сервиса. Неуспех не меняет исход оформления:
// заказ уже существует, о несвежей корзине сигнализируют лог и метрика.
func (o *Orchestrator) clearCart(ctx context.Context, logger *log.Entry, bearer string, order domain.Order) bool {
	defer o.observePhase(PhaseCartCleared, time.Now())

	cleared := true
	if err := o.cart.Clear(ctx, bearer); err != nil {
		cleared = false
		if o.metrics != nil {
			o.metrics.RecordCartClearFailed()
		}
		logger.WithError(err).WithField("order_id", order.ID).
			Warn("cart clear failed after persisted order, cart is stale")
	}

	if summary, err := json.Marshal(orderSummary(order)); err == nil {
		if err := o.cart.MirrorOrder(ctx, bearer, summary); err != nil {
			logger.WithError(err).WithField("order_id", order.ID).Debug("order summary mirror failed")
		}
	}

	return cleared
}

func (o *Orchestrator) observePhase(phase Phase, start time.Time) {
	if o.metrics != nil {
		o.metrics.RecordPhaseDuration(string(phase), time.Since(start))
	}
}

// orderSummary строит компактную сводку заказа для журнала корзинного сервиса.
func orderSummary(order domain.Order) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, map[string]interface{}{
			"product_id": line.ProductID,
			"sku":        line.SKU,
			"name":       line.Name,
			"price":      line.UnitPrice,
			"qty":        line.Qty,
			"subtotal":   line.Subtotal,
		})
	}
	return map[string]interface{}{
		"id":         order.ID,
		"user":       order.Customer,
		"status":     string(order.Status),
		"total":      order.Total,
		"items":      items,
		"created_at": order.CreatedAt.Format(time.RFC3339Nano),
	}
}
