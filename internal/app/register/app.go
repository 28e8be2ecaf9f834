package register

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	gosync "sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/api"
	"gophregister/internal/app/register/config"
	"gophregister/internal/app/register/crypto"
	"gophregister/internal/domain/cart"
	"gophregister/internal/domain/catalog"
	"gophregister/internal/domain/delivery"
	"gophregister/internal/domain/expense"
	"gophregister/internal/domain/monitor"
	"gophregister/internal/domain/provision"
	"gophregister/internal/domain/sale"
	"gophregister/internal/domain/session"
	"gophregister/internal/domain/shift"
	domainsync "gophregister/internal/domain/sync"
	"gophregister/internal/infrastructure/notify/pgnotify"
	"gophregister/internal/infrastructure/notify/poll"
	"gophregister/internal/infrastructure/storage/sqlite"
)

const (
	provisionPollInterval = 3 * time.Second
	shutdownTimeout       = 5 * time.Second

	signedOutNotice = "Device session expired. Provision the register again."
	linkedNotice    = "Register linked to organization."
)

// BranchCatalog справочник филиалов, известных кассе
type BranchCatalog interface {
	BranchExists(ctx context.Context, id string) (bool, error)
}

type App struct {
	config  *config.Config
	log     *slog.Logger
	storage *sqlite.Storage
	vault   *crypto.Vault
	client  *HTTPClient

	Shifts     *shift.Service
	Checklist  *shift.Checklist
	Carts      *cart.Manager
	Sales      *sale.Service
	Expenses   *expense.Service
	Deliveries *delivery.Service
	Catalog    *catalog.Service
	Sync       *domainsync.Service
	Provision  *provision.Service
	Sessions   *session.Service
	Listener   *monitor.Listener
	Notices    *monitor.Notices

	branches BranchCatalog
	tracker  *tracker
	pull     *loop
	push     *loop
	refresh  chan struct{}

	mu           gosync.RWMutex
	state        *AppState
	token        string
	provisioning context.CancelFunc
	ctx          context.Context
	cancel       context.CancelFunc
	wg           gosync.WaitGroup
}

// New собирает кассу: хранилище, сервисы, фоновые задачи и API
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	state, err := loadAppState(cfg.StatePath)
	if err != nil {
		log.Warn("Не удалось загрузить состояние кассы", slog.Any("error", err))
		state = &AppState{}
	}
	if state.DeviceID == "" {
		state.DeviceID = uuid.NewString()
	}
	if state.BranchID == "" {
		state.BranchID = cfg.BranchID
	}
	if state.OperatorID == "" {
		state.OperatorID = cfg.OperatorID
	}

	passphrase := cfg.DevicePassphrase
	if passphrase == "" {
		passphrase = state.DeviceID
	}
	vault, err := crypto.NewVault(cfg.TokenPath, passphrase)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилища токена: %w", err)
	}

	storage, err := sqlite.New(cfg.DataPath, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия локальной базы: %w", err)
	}

	app := &App{
		config:  cfg,
		log:     log.With(slog.String("component", "app")),
		storage: storage,
		vault:   vault,
		state:   state,
		refresh: make(chan struct{}, 1),
		ctx:     context.Background(),
	}

	token, err := vault.Load()
	switch {
	case err == nil:
		app.token = token
		log.Debug("Токен устройства загружен")
	case errors.Is(err, crypto.ErrNoCredentials):
	default:
		log.Warn("Токен устройства не прочитан, требуется повторная привязка", slog.Any("error", err))
	}

	app.client = NewHTTPClient(BaseURL(cfg), app, log)

	catalogRepo := sqlite.NewCatalogRepository(storage, log)
	app.branches = catalogRepo
	app.Catalog = catalog.NewService(catalogRepo, log)

	app.Shifts = shift.NewService(sqlite.NewShiftRepository(storage, log), log, nil)
	app.Checklist = shift.NewChecklist(state.Checklist, nil, app.saveChecklist)
	app.Carts = cart.NewManager(sqlite.NewCartRepository(storage, log), catalogRepo, app.Checklist, log, nil)
	app.Sales = sale.NewService(sqlite.NewSaleRepository(storage, log), app.Carts, app.Shifts, log, nil)
	app.Expenses = expense.NewService(sqlite.NewExpenseRepository(storage, log), app.Shifts, log, nil)
	app.Deliveries = delivery.NewService(sqlite.NewDeliveryRepository(storage, log), app.Shifts, log, nil)
	app.Sessions = session.NewService(sqlite.NewSessionRepository(storage), log, session.DefaultTTL, nil)
	app.Provision = provision.NewService(app.client, app, log)
	app.Sync = domainsync.NewService(sqlite.NewSyncRepository(storage, log), app.client, log, &domainsync.ServiceConfig{
		WindowDays:    cfg.SyncWindowDays,
		RetentionDays: cfg.RetentionDays,
	}, nil)

	app.Notices = monitor.NewNotices(0, nil)
	app.Listener = monitor.NewListener(app.eventSource(log), app.Shifts, app.Notices, app, log)
	app.tracker = newTracker(app.Shifts, app.Listener, cfg.HeartbeatInterval, log)
	app.Shifts.Subscribe(app)

	app.pull = newLoop("pull", cfg.PullInterval, cfg.SyncMaxBackoff, app.pullCycle, log)
	app.push = newLoop("push", cfg.PushInterval, cfg.SyncMaxBackoff, app.pushCycle, log)

	if err := saveAppState(cfg.StatePath, state); err != nil {
		log.Warn("Не удалось сохранить состояние кассы", slog.Any("error", err))
	}

	return app, nil
}

func (a *App) eventSource(log *slog.Logger) monitor.EventSource {
	if a.config.Listener == config.ListenerPGNotify {
		return pgnotify.New(a.config.ListenerDSN, log)
	}
	return poll.New(a.client, a.config.PollInterval, log)
}

// Run запускает фоновые циклы и локальный API и блокируется до отмены ctx
// или сигнала завершения
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	a.ctx = ctx
	a.cancel = cancel
	a.mu.Unlock()

	a.tracker.bind(ctx)

	if _, err := a.Sessions.Sweep(ctx); err != nil {
		a.log.Warn("Не удалось удалить истекшие сессии", slog.Any("error", err))
	}
	if err := a.issueAPIToken(ctx); err != nil {
		return err
	}

	if branchID := a.BranchID(); branchID != "" {
		n, err := a.Carts.Restore(ctx, branchID)
		if err != nil {
			a.log.Warn("Не удалось восстановить корзины", slog.Any("error", err))
		} else if n > 0 {
			a.log.Info("Корзины восстановлены", slog.Int("count", n))
		}
	}

	srv := &http.Server{
		Addr:              a.config.APIAddress,
		Handler:           api.New(a.apiDeps(), a.log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go a.handleSignals(ctx)

	a.wg.Add(4)
	go func() {
		defer a.wg.Done()
		a.runRefresher(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.pull.start(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.push.start(ctx)
	}()
	go func() {
		defer a.wg.Done()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Локальный API остановлен с ошибкой", slog.Any("error", err))
			cancel()
		}
	}()

	a.requestRefresh()
	if a.Provisioned() {
		if err := a.client.HealthCheck(ctx); err != nil {
			a.log.Warn("Облако недоступно, работаем офлайн", slog.Any("error", err))
		}
		a.pull.Trigger()
	}

	a.log.Info("Касса запущена",
		slog.String("api", a.config.APIAddress),
		slog.String("server", a.config.ServerAddress),
		slog.String("env", a.config.Env),
		slog.Bool("provisioned", a.Provisioned()),
	)

	<-ctx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("Ошибка остановки локального API", slog.Any("error", err))
	}

	a.wg.Wait()
	return a.Close()
}

func (a *App) Close() error {
	a.log.Info("Остановка кассы")
	return a.storage.Close()
}

func (a *App) handleSignals(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.log.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
		a.mu.RLock()
		cancel := a.cancel
		a.mu.RUnlock()
		if cancel != nil {
			cancel()
		}
	case <-ctx.Done():
	}
}

func (a *App) apiDeps() api.Deps {
	return api.Deps{
		Register:   a,
		Notices:    a.Notices,
		Sessions:   a.Sessions,
		Shifts:     a.Shifts,
		Checklist:  a.Checklist,
		Carts:      a.Carts,
		Sales:      a.Sales,
		Expenses:   a.Expenses,
		Deliveries: a.Deliveries,
		Catalog:    a.Catalog,
		Sync:       a.Sync,
	}
}

// issueAPIToken выпускает токен локального API и кладет его в файл для интерфейса оператора
func (a *App) issueAPIToken(ctx context.Context) error {
	token, err := a.Sessions.Create(ctx, a.OperatorID())
	if err != nil {
		return fmt.Errorf("ошибка создания токена локального API: %w", err)
	}
	if err := os.WriteFile(a.config.APITokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("ошибка записи токена локального API: %w", err)
	}
	return nil
}

// requestRefresh просит перечитать открытую смену. Не блокирует,
// повторные запросы схлопываются.
func (a *App) requestRefresh() {
	select {
	case a.refresh <- struct{}{}:
	default:
	}
}

// runRefresher единственная горутина, которая меняет отслеживаемую смену
func (a *App) runRefresher(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			a.tracker.Stop()
			return
		case <-a.refresh:
			a.refreshTracked(ctx)
		}
	}
}

func (a *App) refreshTracked(ctx context.Context) {
	var shiftID string
	if branchID := a.BranchID(); branchID != "" {
		current, err := a.Shifts.Current(ctx, branchID)
		switch {
		case err == nil:
			shiftID = current.ID
		case errors.Is(err, shift.ErrNoOpenShift):
		default:
			a.log.Warn("Не удалось прочитать открытую смену", slog.Any("error", err))
			return
		}
	}
	a.tracker.Track(shiftID)
}

func (a *App) pullCycle(ctx context.Context) error {
	_, err := a.PullNow(ctx)
	if errors.Is(err, provision.ErrNotProvisioned) || errors.Is(err, domainsync.ErrNoBranch) {
		return nil
	}
	return err
}

func (a *App) pushCycle(ctx context.Context) error {
	_, err := a.PushNow(ctx)
	if errors.Is(err, provision.ErrNotProvisioned) || errors.Is(err, domainsync.ErrNoBranch) {
		return nil
	}
	return err
}

func (a *App) PullNow(ctx context.Context) (*domainsync.PullResult, error) {
	if !a.Provisioned() {
		return nil, provision.ErrNotProvisioned
	}
	res, err := a.Sync.Pull(ctx, a.BranchID())
	if err != nil {
		a.syncFailed(ctx, err)
		return nil, err
	}
	a.markSynced()
	return res, nil
}

func (a *App) PushNow(ctx context.Context) (*domainsync.PushResult, error) {
	if !a.Provisioned() {
		return nil, provision.ErrNotProvisioned
	}
	res, err := a.Sync.Push(ctx, a.BranchID())
	if err != nil {
		a.syncFailed(ctx, err)
		return nil, err
	}
	a.markSynced()
	return res, nil
}

// syncFailed при отказе облака в токене выполняет принудительный выход
func (a *App) syncFailed(ctx context.Context, err error) {
	if !errors.Is(err, domainsync.ErrUnauthorized) {
		return
	}
	a.log.Warn("Облако отклонило токен устройства", slog.Any("error", err))
	if err := a.SignOut(ctx); err != nil {
		a.log.Error("Ошибка принудительного выхода", slog.Any("error", err))
	}
	a.Notices.Warn(signedOutNotice)
	_ = a.Reinitialize(ctx)
}

func (a *App) markSynced() {
	now := time.Now().UTC()
	a.updateState(func(s *AppState) { s.LastSyncAt = &now })
}

func (a *App) saveChecklist(st shift.ChecklistState) {
	a.updateState(func(s *AppState) { s.Checklist = st })
}

func (a *App) updateState(fn func(s *AppState)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a.state)
	if err := saveAppState(a.config.StatePath, a.state); err != nil {
		a.log.Warn("Не удалось сохранить состояние кассы", slog.Any("error", err))
	}
}

// ShiftOpened сбрасывает чек-лист и запрашивает свежие данные филиала
func (a *App) ShiftOpened(_ context.Context, s *shift.Shift, retaken bool) {
	if !retaken {
		a.Checklist.Reset()
	}
	a.requestRefresh()
	a.pull.Trigger()
	a.log.Debug("Смена открыта", slog.String("shift_id", s.ID), slog.Bool("retaken", retaken))
}

func (a *App) ShiftClosed(_ context.Context, s *shift.Shift) {
	a.Checklist.ClearProgress()
	a.requestRefresh()
	a.push.Trigger()
	a.pull.Trigger()
	a.log.Debug("Смена закрыта", slog.String("shift_id", s.ID))
}

// Reinitialize вызывается после удаленного закрытия смены или выхода
func (a *App) Reinitialize(_ context.Context) error {
	a.Checklist.ClearProgress()
	a.requestRefresh()
	a.pull.Trigger()
	a.log.Info("Состояние кассы перечитано")
	return nil
}

// Token токен устройства для облака
func (a *App) Token() (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.token == "" {
		return "", crypto.ErrNoCredentials
	}
	return a.token, nil
}

// SaveCredentials сохраняет результат привязки устройства
func (a *App) SaveCredentials(_ context.Context, c provision.Credentials) error {
	if err := a.vault.Save(c.Token); err != nil {
		return err
	}

	a.mu.Lock()
	a.token = c.Token
	a.mu.Unlock()

	a.updateState(func(s *AppState) { s.OrganizationID = c.OrganizationID })
	return nil
}

func (a *App) Provisioned() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token != ""
}

func (a *App) OrganizationID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.OrganizationID
}

func (a *App) DeviceID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.DeviceID
}

func (a *App) BranchID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.BranchID
}

func (a *App) OperatorID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.OperatorID
}

func (a *App) QueueLen() int {
	return a.storage.Writer().Pending()
}

// SelectBranch меняет филиал кассы. Пока справочник филиалов пуст
// (первая загрузка еще не прошла), принимается любой филиал.
func (a *App) SelectBranch(ctx context.Context, branchID, operatorID string) error {
	if branchID == "" {
		return domainsync.ErrNoBranch
	}

	exists, err := a.branches.BranchExists(ctx, branchID)
	if err != nil {
		return err
	}
	if !exists {
		known, err := a.Catalog.Branches(ctx)
		if err != nil {
			return err
		}
		if len(known) > 0 {
			return domainsync.ErrUnknownBranch
		}
	}

	a.updateState(func(s *AppState) {
		s.BranchID = branchID
		if operatorID != "" {
			s.OperatorID = operatorID
		}
	})

	if _, err := a.Carts.Restore(ctx, branchID); err != nil {
		a.log.Warn("Не удалось восстановить корзины филиала", slog.Any("error", err))
	}

	a.log.Info("Выбран филиал", slog.String("branch_id", branchID))
	a.requestRefresh()
	a.pull.Trigger()
	return nil
}

// StartProvisioning открывает сессию привязки и ждет подтверждения в фоне
func (a *App) StartProvisioning(ctx context.Context) (*provision.Session, error) {
	deviceID := a.DeviceID()
	s, err := a.Provision.Start(ctx, deviceID, a.config.DeviceName)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if a.provisioning != nil {
		a.provisioning()
	}
	waitCtx, cancel := context.WithCancel(a.ctx)
	a.provisioning = cancel
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer cancel()

		if _, err := a.Provision.Wait(waitCtx, s.ID, deviceID, provisionPollInterval); err != nil {
			if waitCtx.Err() == nil {
				a.log.Warn("Привязка устройства не завершена", slog.Any("error", err))
				a.Notices.Warn(fmt.Sprintf("Provisioning failed: %v", err))
			}
			return
		}
		a.Notices.Info(linkedNotice)
		a.pull.Trigger()
		a.push.Trigger()
	}()

	return s, nil
}

// SignOut удаляет токен устройства. Локальные данные остаются.
func (a *App) SignOut(_ context.Context) error {
	a.mu.Lock()
	if a.provisioning != nil {
		a.provisioning()
		a.provisioning = nil
	}
	a.token = ""
	a.mu.Unlock()

	if err := a.vault.Wipe(); err != nil {
		return err
	}
	a.updateState(func(s *AppState) { s.OrganizationID = "" })
	a.log.Info("Токен устройства удален")
	return nil
}
