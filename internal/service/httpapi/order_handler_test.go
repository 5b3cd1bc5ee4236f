package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/auth"
	"github.com/vladislavdragonenkov/storefront/internal/client"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

// orderTestEnv поднимает каталог и корзину как реальные HTTP-сервисы
// и собирает поверх них сервис заказов, как в боевой сборке.
type orderTestEnv struct {
	orders  *httptest.Server
	catalog *httptest.Server
	cart    *httptest.Server
	issuer  *auth.TokenIssuer
	ledger  domain.OrderRepository
}

func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()

	issuer := auth.NewTokenIssuer("test-secret")

	catalogSrv := httptest.NewServer(NewCatalogRouter(NewCatalogHandler(memory.NewProductRepository(), nil), issuer))
	t.Cleanup(catalogSrv.Close)

	cartSrv := httptest.NewServer(NewCartRouter(NewCartHandler(memory.NewCartRepository(), nil), issuer))
	t.Cleanup(cartSrv.Close)

	ledger := memory.NewOrderRepository()
	orchestrator := checkout.NewOrchestratorWithoutMetrics(
		ledger,
		client.NewCartClient(cartSrv.URL, nil),
		client.NewCatalogClient(catalogSrv.URL, nil),
		issuer,
		nil,
	)

	handler := NewOrderHandler(orchestrator, ledger, memory.NewIdempotencyRepository(), nil)
	ordersSrv := httptest.NewServer(NewOrderRouter(handler, issuer))
	t.Cleanup(ordersSrv.Close)

	return &orderTestEnv{
		orders:  ordersSrv,
		catalog: catalogSrv,
		cart:    cartSrv,
		issuer:  issuer,
		ledger:  ledger,
	}
}

func (env *orderTestEnv) createProduct(t *testing.T, body string) string {
	t.Helper()

	resp := postJSON(t, env.catalog.URL+"/products", body, adminToken(t, env.issuer))
	require.Equal(t, http.StatusCreated, resp.status)

	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.body), &created))
	return created["id"].(string)
}

func (env *orderTestEnv) addToCart(t *testing.T, token, productID string, qty int32) {
	t.Helper()

	body, _ := json.Marshal(map[string]any{"product_id": productID, "qty": qty})
	resp := postJSON(t, env.cart.URL+"/cart/add", string(body), token)
	require.Equal(t, http.StatusOK, resp.status)
}

func TestCheckoutHappyPath(t *testing.T) {
	env := newOrderTestEnv(t)
	token := userToken(t, env.issuer)

	widgetID := env.createProduct(t, `{"sku":"SKU-1","name":"Widget","price":19.99,"stock":10}`)
	gadgetID := env.createProduct(t, `{"sku":"SKU-2","name":"Gadget","price":5.00,"stock":4}`)
	env.addToCart(t, token, widgetID, 2)
	env.addToCart(t, token, gadgetID, 1)

	resp := postJSON(t, env.orders.URL+"/orders/checkout", "", token)
	require.Equal(t, http.StatusOK, resp.status)

	var result struct {
		ID          string      `json:"id"`
		User        string      `json:"user"`
		Status      string      `json:"status"`
		Total       json.Number `json:"total"`
		CartCleared bool        `json:"cartCleared"`
		Items       []struct {
			Name     string      `json:"name"`
			Qty      int32       `json:"qty"`
			Subtotal json.Number `json:"subtotal"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.body), &result))

	assert.Equal(t, "user@example.com", result.User)
	assert.Equal(t, "paid", result.Status)
	assert.True(t, result.CartCleared)
	// Денежные суммы сериализуются числом с двумя знаками после точки.
	assert.Equal(t, json.Number("44.98"), result.Total)
	require.Len(t, result.Items, 2)
	for _, item := range result.Items {
		if item.Name == "Widget" {
			assert.Equal(t, int32(2), item.Qty)
			assert.Equal(t, json.Number("39.98"), item.Subtotal)
		}
	}

	// Остатки списаны в каталоге.
	catalogResp := getWithToken(t, env.catalog.URL+"/products/"+widgetID, "")
	require.Equal(t, http.StatusOK, catalogResp.status)
	assert.Contains(t, catalogResp.body, `"stock":8`)

	catalogResp = getWithToken(t, env.catalog.URL+"/products/"+gadgetID, "")
	require.Equal(t, http.StatusOK, catalogResp.status)
	assert.Contains(t, catalogResp.body, `"stock":3`)

	// Корзина очищена, сводка попала в журнал корзинного сервиса.
	cartResp := getWithToken(t, env.cart.URL+"/cart", token)
	require.Equal(t, http.StatusOK, cartResp.status)
	var cart cartDTO
	require.NoError(t, json.Unmarshal([]byte(cartResp.body), &cart))
	assert.Empty(t, cart.Items)

	journalResp := getWithToken(t, env.cart.URL+"/cart/orders", token)
	require.Equal(t, http.StatusOK, journalResp.status)
	assert.Contains(t, journalResp.body, result.ID)

	// Заказ читается обратно из ledger.
	orderResp := getWithToken(t, env.orders.URL+"/orders/"+result.ID, token)
	require.Equal(t, http.StatusOK, orderResp.status)
	assert.Contains(t, orderResp.body, `"status":"paid"`)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newOrderTestEnv(t)
	token := userToken(t, env.issuer)

	resp := postJSON(t, env.orders.URL+"/orders/checkout", "", token)
	require.Equal(t, http.StatusBadRequest, resp.status)
	assert.JSONEq(t, `{"detail":"Cart is empty"}`, resp.body)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	env := newOrderTestEnv(t)
	token := userToken(t, env.issuer)

	productID := env.createProduct(t, `{"sku":"SKU-1","name":"Widget","price":19.99,"stock":1}`)
	env.addToCart(t, token, productID, 2)

	resp := postJSON(t, env.orders.URL+"/orders/checkout", "", token)
	require.Equal(t, http.StatusConflict, resp.status)
	assert.JSONEq(t, `{"detail":"Not enough stock for Widget"}`, resp.body)

	// Остаток не тронут, корзина сохранена.
	catalogResp := getWithToken(t, env.catalog.URL+"/products/"+productID, "")
	assert.Contains(t, catalogResp.body, `"stock":1`)

	cartResp := getWithToken(t, env.cart.URL+"/cart", token)
	var cart cartDTO
	require.NoError(t, json.Unmarshal([]byte(cartResp.body), &cart))
	assert.Equal(t, int32(2), cart.Items[productID])
}

func TestCheckoutInactiveProduct(t *testing.T) {
	env := newOrderTestEnv(t)
	token := userToken(t, env.issuer)

	productID := env.createProduct(t, `{"sku":"SKU-1","name":"Widget","price":19.99,"stock":5,"is_active":false}`)
	env.addToCart(t, token, productID, 1)

	resp := postJSON(t, env.orders.URL+"/orders/checkout", "", token)
	require.Equal(t, http.StatusConflict, resp.status)
	assert.JSONEq(t, `{"detail":"Widget not available"}`, resp.body)
}

func TestCheckoutIdempotencyReplay(t *testing.T) {
	env := newOrderTestEnv(t)
	token := userToken(t, env.issuer)

	productID := env.createProduct(t, `{"sku":"SKU-1","name":"Widget","price":19.99,"stock":10}`)
	env.addToCart(t, token, productID, 2)

	headers := map[string]string{"Idempotency-Key": "key-1"}
	first := doRequest(t, http.MethodPost, env.orders.URL+"/orders/checkout", "", token, headers)
	require.Equal(t, http.StatusOK, first.status)

	// Повтор с тем же ключом возвращает сохранённый ответ байт в байт
	// и не списывает остаток второй раз.
	second := doRequest(t, http.MethodPost, env.orders.URL+"/orders/checkout", "", token, headers)
	require.Equal(t, http.StatusOK, second.status)
	assert.Equal(t, first.body, second.body)

	catalogResp := getWithToken(t, env.catalog.URL+"/products/"+productID, "")
	assert.Contains(t, catalogResp.body, `"stock":8`)

	orders, err := env.ledger.ListByCustomer("user@example.com", 0)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckoutIdempotencyKeyReuse(t *testing.T) {
	env := newOrderTestEnv(t)

	alice, err := env.issuer.AccessToken("alice@example.com", "user")
	require.NoError(t, err)
	bob, err := env.issuer.AccessToken("bob@example.com", "user")
	require.NoError(t, err)

	productID := env.createProduct(t, `{"sku":"SKU-1","name":"Widget","price":19.99,"stock":10}`)
	env.addToCart(t, alice, productID, 1)
	env.addToCart(t, bob, productID, 1)

	headers := map[string]string{"Idempotency-Key": "shared-key"}
	resp := doRequest(t, http.MethodPost, env.orders.URL+"/orders/checkout", "", alice, headers)
	require.Equal(t, http.StatusOK, resp.status)

	// Тот же ключ от другого покупателя — конфликт переиспользования.
	resp = doRequest(t, http.MethodPost, env.orders.URL+"/orders/checkout", "", bob, headers)
	require.Equal(t, http.StatusConflict, resp.status)
	assert.Contains(t, resp.body, "Idempotency key is already used with a different request")
}

func TestCheckoutIdempotencyReplaysFailures(t *testing.T) {
	env := newOrderTestEnv(t)
	token := userToken(t, env.issuer)

	headers := map[string]string{"Idempotency-Key": "key-1"}
	resp := doRequest(t, http.MethodPost, env.orders.URL+"/orders/checkout", "", token, headers)
	require.Equal(t, http.StatusBadRequest, resp.status)
	assert.JSONEq(t, `{"detail":"Cart is empty"}`, resp.body)

	// Неуспешный результат тоже повторяется, а не пересчитывается.
	resp = doRequest(t, http.MethodPost, env.orders.URL+"/orders/checkout", "", token, headers)
	require.Equal(t, http.StatusBadRequest, resp.status)
	assert.JSONEq(t, `{"detail":"Cart is empty"}`, resp.body)
}

func TestOrdersVisibility(t *testing.T) {
	env := newOrderTestEnv(t)

	alice, err := env.issuer.AccessToken("alice@example.com", "user")
	require.NoError(t, err)
	bob, err := env.issuer.AccessToken("bob@example.com", "user")
	require.NoError(t, err)
	admin := adminToken(t, env.issuer)

	productID := env.createProduct(t, `{"sku":"SKU-1","name":"Widget","price":19.99,"stock":10}`)
	env.addToCart(t, alice, productID, 1)

	resp := postJSON(t, env.orders.URL+"/orders/checkout", "", alice)
	require.Equal(t, http.StatusOK, resp.status)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.body), &created))

	// Чужой заказ для обычного пользователя выглядит как несуществующий.
	resp = getWithToken(t, env.orders.URL+"/orders/"+created.ID, bob)
	require.Equal(t, http.StatusNotFound, resp.status)
	assert.Contains(t, resp.body, "Order not found")

	resp = getWithToken(t, env.orders.URL+"/orders/"+created.ID, admin)
	assert.Equal(t, http.StatusOK, resp.status)

	// Список заказов покупателя видит только свои.
	resp = getWithToken(t, env.orders.URL+"/orders", bob)
	require.Equal(t, http.StatusOK, resp.status)
	assert.JSONEq(t, `[]`, resp.body)

	// Админские маршруты закрыты для обычного пользователя.
	resp = getWithToken(t, env.orders.URL+"/orders/all", bob)
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = getWithToken(t, env.orders.URL+"/orders/all", admin)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, created.ID)
}

func TestOrderCancel(t *testing.T) {
	env := newOrderTestEnv(t)
	token := userToken(t, env.issuer)
	admin := adminToken(t, env.issuer)

	productID := env.createProduct(t, `{"sku":"SKU-1","name":"Widget","price":19.99,"stock":10}`)
	env.addToCart(t, token, productID, 1)

	resp := postJSON(t, env.orders.URL+"/orders/checkout", "", token)
	require.Equal(t, http.StatusOK, resp.status)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.body), &created))

	resp = postJSON(t, env.orders.URL+"/orders/"+created.ID+"/cancel", "", token)
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = postJSON(t, env.orders.URL+"/orders/"+created.ID+"/cancel", "", admin)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `"status":"canceled"`)

	// Повторная отмена идемпотентна.
	resp = postJSON(t, env.orders.URL+"/orders/"+created.ID+"/cancel", "", admin)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `"status":"canceled"`)
}
