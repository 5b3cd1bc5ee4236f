package app

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/service/httpapi"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// GatewayConfig описывает адреса backend-сервисов для edge-шлюза.
type GatewayConfig struct {
	HTTPAddr    string
	MetricsAddr string
	AuthURL     string
	CatalogURL  string
	CartURL     string
	OrderURL    string
}

// DefaultGatewayConfig возвращает адреса по умолчанию.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9094",
		AuthURL:     "http://localhost:8000",
		CatalogURL:  "http://localhost:8001",
		CartURL:     "http://localhost:8002",
		OrderURL:    "http://localhost:8003",
	}
}

// RunGateway запускает edge-шлюз: единая точка входа, проксирующая
// запросы к сервисам по префиксу пути. Тела и заголовки проходят
// насквозь, аутентификация остаётся на сервисах.
func RunGateway(ctx context.Context, cfg GatewayConfig) error {
	logger := log.WithField("component", "gateway")

	routes := []struct {
		prefix string
		target string
	}{
		{"/auth", cfg.AuthURL},
		{"/products", cfg.CatalogURL},
		{"/cart", cfg.CartURL},
		{"/orders", cfg.OrderURL},
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(httpapi.RequestLogger(logger))

	for _, route := range routes {
		proxy, err := newPrefixProxy(route.target, logger)
		if err != nil {
			return err
		}
		r.Mount(route.prefix, proxy)
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	return serveHTTP(ctx, cfg.HTTPAddr, r, logger)
}

// newPrefixProxy создаёт reverse-proxy на один backend. Путь запроса
// передаётся без изменений: сервисы слушают те же префиксы, что и шлюз.
func newPrefixProxy(target string, logger *log.Entry) (http.Handler, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(parsed)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.WithError(err).WithField("target", parsed.Host).Warn("backend unavailable")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail":"` + serviceNameFor(r.URL.Path) + ` unavailable"}`))
	}

	// chi оставляет r.URL.Path нетронутым, прокси видит исходный путь.
	return proxy, nil
}

func serviceNameFor(path string) string {
	switch {
	case strings.HasPrefix(path, "/auth"):
		return "auth"
	case strings.HasPrefix(path, "/products"):
		return "catalog"
	case strings.HasPrefix(path, "/cart"):
		return "cart"
	case strings.HasPrefix(path, "/orders"):
		return "orders"
	default:
		return "backend"
	}
}
