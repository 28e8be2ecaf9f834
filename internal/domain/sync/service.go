package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"golang.org/x/exp/slog"
)

type Servicer interface {
	Pull(ctx context.Context, branchID string) (*PullResult, error)
	Push(ctx context.Context, branchID string) (*PushResult, error)
	Status(ctx context.Context, branchID string) (*Status, error)
	// MarkSynced вручную помечает строки сущности выгруженными
	MarkSynced(ctx context.Context, entity string, ids []string) (int, error)
	// Prune удаляет синхронизированные строки старше days дней
	Prune(ctx context.Context, days int) (int64, error)
}

type ServiceConfig struct {
	// WindowDays глубина истории, запрашиваемой при загрузке
	WindowDays int
	// RetentionDays срок хранения синхронизированных строк
	RetentionDays int
}

// Service загрузка и выгрузка данных филиала. Pull и Push не выполняются одновременно
type Service struct {
	repo   Repository
	remote Remote
	log    *slog.Logger
	now    func() time.Time
	config ServiceConfig

	// загрузка и выгрузка не пересекаются
	mu stdsync.Mutex

	stateMu  stdsync.RWMutex
	lastPull *time.Time
	lastPush *time.Time
	lastErr  string
}

// NewService создает сервис синхронизации. config и now могут быть nil
func NewService(repo Repository, remote Remote, log *slog.Logger, config *ServiceConfig, now func() time.Time) *Service {
	if config == nil {
		config = &ServiceConfig{WindowDays: 30, RetentionDays: 30}
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   repo,
		remote: remote,
		log:    log.With(slog.String("component", "sync")),
		now:    now,
		config: *config,
	}
}

// Pull загружает снимок филиала из облака и применяет его к локальной базе
func (s *Service) Pull(ctx context.Context, branchID string) (*PullResult, error) {
	if branchID == "" {
		return nil, ErrNoBranch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.remote.FetchSnapshot(ctx, branchID, s.config.WindowDays)
	if err != nil {
		s.fail(err)
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	stats, err := s.repo.ApplySnapshot(ctx, branchID, snap)
	if err != nil {
		s.fail(err)
		return nil, fmt.Errorf("apply snapshot: %w", err)
	}

	res := &PullResult{
		Upserted:     stats.Upserted,
		SkippedDirty: stats.SkippedDirty,
		KeptStock:    stats.KeptStock,
		Relinked:     stats.Relinked,
	}

	before := s.now().UTC().AddDate(0, 0, -s.config.RetentionDays)
	pruned, err := s.repo.Prune(ctx, before)
	if err != nil {
		// очистка не влияет на результат загрузки
		s.log.Warn("Очистка истории не удалась", slog.Any("error", err))
	}
	res.Pruned = pruned

	now := s.now().UTC()
	s.stateMu.Lock()
	s.lastPull = &now
	s.lastErr = ""
	s.stateMu.Unlock()

	s.log.Info("Загрузка завершена",
		slog.String("branch_id", branchID),
		slog.Int("upserted", res.Upserted),
		slog.Int("skipped_dirty", res.SkippedDirty),
		slog.Int("relinked", res.Relinked),
		slog.Int64("pruned", res.Pruned),
	)
	return res, nil
}

// Push выгружает несинхронизированные строки и помечает подтвержденные
func (s *Service) Push(ctx context.Context, branchID string) (*PushResult, error) {
	if branchID == "" {
		return nil, ErrNoBranch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.repo.BranchExists(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("check branch: %w", err)
	}
	if !ok {
		return nil, ErrUnknownBranch
	}

	batch, err := s.repo.Unsynced(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("collect unsynced: %w", err)
	}
	batch.BranchID = branchID

	res := &PushResult{Sent: batch.Dirty(), Acked: map[string]int{}}
	if res.Sent == 0 && len(batch.Orders) == 0 {
		return res, nil
	}

	resp, err := s.remote.PushBatch(ctx, batch)
	if err != nil {
		s.fail(err)
		return nil, fmt.Errorf("push batch: %w", err)
	}

	for _, entity := range Entities {
		sent := batch.IDs(entity)
		if len(sent) == 0 {
			continue
		}
		acked := ackedIDs(sent, resp.Results[entity])
		if len(acked) == 0 {
			continue
		}
		n, err := s.repo.AckSynced(ctx, entity, batch.Acks(entity, acked))
		if err != nil {
			s.fail(err)
			return nil, fmt.Errorf("mark %s synced: %w", entity, err)
		}
		if n < len(acked) {
			s.log.Info("Строки изменены во время выгрузки, остаются в очереди",
				slog.String("entity", entity),
				slog.Int("changed", len(acked)-n),
			)
		}
		if n > 0 {
			res.Acked[entity] = n
		}
	}

	now := s.now().UTC()
	s.stateMu.Lock()
	s.lastPush = &now
	s.lastErr = ""
	s.stateMu.Unlock()

	s.log.Info("Выгрузка завершена",
		slog.String("branch_id", branchID),
		slog.Int("sent", res.Sent),
		slog.Int("orders", len(batch.Orders)),
		slog.Any("acked", res.Acked),
	)
	return res, nil
}

// Status время последних обменов и размер очереди выгрузки
func (s *Service) Status(ctx context.Context, branchID string) (*Status, error) {
	st := &Status{BranchID: branchID, Pending: map[string]int{}}

	s.stateMu.RLock()
	st.LastPullAt = s.lastPull
	st.LastPushAt = s.lastPush
	st.LastError = s.lastErr
	s.stateMu.RUnlock()

	if branchID == "" {
		return st, nil
	}

	counts, err := s.repo.PendingCounts(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("pending counts: %w", err)
	}
	st.Pending = counts
	return st, nil
}

func (s *Service) MarkSynced(ctx context.Context, entity string, ids []string) (int, error) {
	if !knownEntity(entity) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.MarkSynced(ctx, entity, ids); err != nil {
		return 0, fmt.Errorf("mark %s synced: %w", entity, err)
	}
	s.log.Info("Строки помечены синхронизированными",
		slog.String("entity", entity),
		slog.Int("count", len(ids)),
	)
	return len(ids), nil
}

// Prune удаляет синхронизированные строки старше days дней
func (s *Service) Prune(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = s.config.RetentionDays
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.now().UTC().AddDate(0, 0, -days)
	n, err := s.repo.Prune(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	s.log.Info("История очищена", slog.Int("days", days), slog.Int64("deleted", n))
	return n, nil
}

func knownEntity(entity string) bool {
	for _, e := range Entities {
		if e == entity {
			return true
		}
	}
	return false
}

func (s *Service) fail(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.stateMu.Lock()
	s.lastErr = err.Error()
	s.stateMu.Unlock()
}

// ackedIDs выбирает подтвержденные строки: явный список ids, если облако
// его вернуло, иначе первые success строк в порядке отправки
func ackedIDs(sent []string, res EntityResult) []string {
	if len(res.IDs) > 0 {
		confirmed := make(map[string]struct{}, len(res.IDs))
		for _, id := range res.IDs {
			confirmed[id] = struct{}{}
		}
		var out []string
		for _, id := range sent {
			if _, ok := confirmed[id]; ok {
				out = append(out, id)
			}
		}
		return out
	}

	n := res.Success
	if n > len(sent) {
		n = len(sent)
	}
	if n <= 0 {
		return nil
	}
	return append([]string(nil), sent[:n]...)
}
