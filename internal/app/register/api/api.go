// Локальный API кассы. Слушает только loopback, все операции кроме
// health требуют Bearer токен локальной сессии.
//
//GET  /api/v1/health                 # Состояние кассы (публичный)
//GET  /api/v1/device                 # Привязка и контекст кассы
//POST /api/v1/shifts/open            # Открыть смену
//POST /api/v1/shifts/{id}/close      # Закрыть смену
//POST /api/v1/carts/{table}/lines    # Добавить товар в корзину
//POST /api/v1/sales                  # Оплатить стол
//POST /api/v1/sync/pull              # Загрузка из облака
//POST /api/v1/sync/push              # Выгрузка в облако

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	cartAPI "gophregister/internal/app/register/api/http/cart"
	catalogAPI "gophregister/internal/app/register/api/http/catalog"
	deliveryAPI "gophregister/internal/app/register/api/http/delivery"
	deviceAPI "gophregister/internal/app/register/api/http/device"
	expenseAPI "gophregister/internal/app/register/api/http/expense"
	healthAPI "gophregister/internal/app/register/api/http/health"
	"gophregister/internal/app/register/api/http/middleware"
	"gophregister/internal/app/register/api/http/middleware/auth"
	"gophregister/internal/app/register/api/http/middleware/logger"
	"gophregister/internal/app/register/api/http/respond"
	saleAPI "gophregister/internal/app/register/api/http/sale"
	shiftAPI "gophregister/internal/app/register/api/http/shift"
	syncAPI "gophregister/internal/app/register/api/http/sync"
	"gophregister/internal/domain/cart"
	"gophregister/internal/domain/catalog"
	"gophregister/internal/domain/delivery"
	"gophregister/internal/domain/expense"
	"gophregister/internal/domain/sale"
	"gophregister/internal/domain/session"
	"gophregister/internal/domain/shift"
	domainsync "gophregister/internal/domain/sync"
)

// Register касса целиком: привязка, контекст и внеочередная синхронизация
type Register interface {
	healthAPI.Probe
	deviceAPI.Device
	syncAPI.Runner
}

type Deps struct {
	Register   Register
	Notices    deviceAPI.Notices
	Sessions   session.Servicer
	Shifts     shift.Servicer
	Checklist  shiftAPI.Checklist
	Carts      cart.Servicer
	Sales      sale.Servicer
	Expenses   expense.Servicer
	Deliveries delivery.Servicer
	Catalog    catalog.Servicer
	Sync       domainsync.Servicer
}

type handlers struct {
	Health   *healthAPI.Handler
	Device   *deviceAPI.Handler
	Shift    *shiftAPI.Handler
	Cart     *cartAPI.Handler
	Sale     *saleAPI.Handler
	Expense  *expenseAPI.Handler
	Delivery *deliveryAPI.Handler
	Catalog  *catalogAPI.Handler
	Sync     *syncAPI.Handler
}

// New создает *chi.Mux со всеми операциями локального API
func New(deps Deps, log *slog.Logger) *chi.Mux {
	respond.Install()

	mux := chi.NewMux()

	config := huma.DefaultConfig("GophRegister API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := newHandlers(deps, log)
	h.Health.SetupRoutes(API)
	h.Device.SetupRoutes(API)
	h.Shift.SetupRoutes(API)
	h.Cart.SetupRoutes(API)
	h.Sale.SetupRoutes(API)
	h.Expense.SetupRoutes(API)
	h.Delivery.SetupRoutes(API)
	h.Catalog.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	return mux
}

func newHandlers(deps Deps, log *slog.Logger) *handlers {
	authMW := auth.New(deps.Sessions, log)
	chain := middleware.NewChain(logger.New(log).Middleware())
	protected := chain.With(authMW.Middleware())

	return &handlers{
		Health:   healthAPI.NewHandler(deps.Register, log, chain.With()),
		Device:   deviceAPI.NewHandler(deps.Register, deps.Notices, log, protected),
		Shift:    shiftAPI.NewHandler(deps.Shifts, deps.Checklist, deps.Register, log, protected),
		Cart:     cartAPI.NewHandler(deps.Carts, deps.Shifts, deps.Register, log, protected),
		Sale:     saleAPI.NewHandler(deps.Sales, deps.Register, log, protected),
		Expense:  expenseAPI.NewHandler(deps.Expenses, deps.Register, log, protected),
		Delivery: deliveryAPI.NewHandler(deps.Deliveries, deps.Register, log, protected),
		Catalog:  catalogAPI.NewHandler(deps.Catalog, deps.Register, log, protected),
		Sync:     syncAPI.NewHandler(deps.Register, deps.Sync, log, protected),
	}
}
