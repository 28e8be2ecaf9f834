package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/cart"
	"gophregister/internal/domain/expense"
	"gophregister/internal/domain/sale"
	"gophregister/internal/domain/shift"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ApplySnapshot(ctx context.Context, branchID string, snap *Snapshot) (*ApplyStats, error) {
	args := m.Called(ctx, branchID, snap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ApplyStats), args.Error(1)
}

func (m *MockRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) BranchExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Unsynced(ctx context.Context, branchID string) (*Batch, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Batch), args.Error(1)
}

func (m *MockRepository) MarkSynced(ctx context.Context, entity string, ids []string) error {
	return m.Called(ctx, entity, ids).Error(0)
}

func (m *MockRepository) AckSynced(ctx context.Context, entity string, acks []Ack) (int, error) {
	args := m.Called(ctx, entity, acks)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) PendingCounts(ctx context.Context, branchID string) (map[string]int, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) FetchSnapshot(ctx context.Context, branchID string, days int) (*Snapshot, error) {
	args := m.Called(ctx, branchID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Snapshot), args.Error(1)
}

func (m *MockRemote) PushBatch(ctx context.Context, b *Batch) (*PushResponse, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PushResponse), args.Error(1)
}

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *MockRepository, *MockRemote) {
	repo := new(MockRepository)
	remote := new(MockRemote)
	svc := NewService(repo, remote, slog.Default(), &ServiceConfig{WindowDays: 7, RetentionDays: 30},
		func() time.Time { return fixedNow })
	return svc, repo, remote
}

func TestAckedIDs(t *testing.T) {
	sent := []string{"a", "b", "c"}

	tests := []struct {
		name string
		res  EntityResult
		want []string
	}{
		{name: "explicit ids", res: EntityResult{Success: 3, IDs: []string{"c", "a"}}, want: []string{"a", "c"}},
		{name: "unknown ids ignored", res: EntityResult{IDs: []string{"x", "b"}}, want: []string{"b"}},
		{name: "success count", res: EntityResult{Success: 2}, want: []string{"a", "b"}},
		{name: "success above sent", res: EntityResult{Success: 10}, want: []string{"a", "b", "c"}},
		{name: "nothing acked", res: EntityResult{}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ackedIDs(sent, tt.res))
		})
	}
}

func TestService_Pull(t *testing.T) {
	svc, repo, remote := newTestService()

	snap := &Snapshot{Expenses: []expense.Expense{{ID: "e1"}}}
	remote.On("FetchSnapshot", mock.Anything, "b1", 7).Return(snap, nil)
	repo.On("ApplySnapshot", mock.Anything, "b1", snap).Return(&ApplyStats{Upserted: 1, SkippedDirty: 2, Relinked: 1}, nil)
	repo.On("Prune", mock.Anything, fixedNow.AddDate(0, 0, -30)).Return(int64(4), nil)

	res, err := svc.Pull(context.Background(), "b1")

	require.NoError(t, err)
	assert.Equal(t, 1, res.Upserted)
	assert.Equal(t, 2, res.SkippedDirty)
	assert.Equal(t, 1, res.Relinked)
	assert.Equal(t, int64(4), res.Pruned)
	repo.AssertExpectations(t)

	repo.On("PendingCounts", mock.Anything, "b1").Return(map[string]int{EntitySales: 0}, nil)
	st, err := svc.Status(context.Background(), "b1")
	require.NoError(t, err)
	require.NotNil(t, st.LastPullAt)
	assert.Equal(t, fixedNow, *st.LastPullAt)
	assert.Empty(t, st.LastError)
}

func TestService_Pull_Unauthorized(t *testing.T) {
	svc, repo, remote := newTestService()
	remote.On("FetchSnapshot", mock.Anything, "b1", 7).Return(nil, ErrUnauthorized)

	_, err := svc.Pull(context.Background(), "b1")

	assert.ErrorIs(t, err, ErrUnauthorized)
	repo.AssertNotCalled(t, "ApplySnapshot", mock.Anything, mock.Anything, mock.Anything)

	st, err := svc.Status(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, ErrUnauthorized.Error(), st.LastError)
}

func TestService_Pull_NoBranch(t *testing.T) {
	svc, _, remote := newTestService()

	_, err := svc.Pull(context.Background(), "")

	assert.ErrorIs(t, err, ErrNoBranch)
	remote.AssertNotCalled(t, "FetchSnapshot", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Push(t *testing.T) {
	svc, repo, remote := newTestService()

	batch := &Batch{
		Shifts:   []shift.Shift{{ID: "s1"}},
		Sales:    []sale.Sale{{ID: "v1"}, {ID: "v2"}, {ID: "v3"}},
		Expenses: []expense.Expense{{ID: "e1"}},
		Orders:   []cart.PendingOrder{{ID: "o1"}},
	}
	batch.SetRevision(EntityShifts, "s1", 2)
	batch.SetRevision(EntitySales, "v3", 1)
	repo.On("BranchExists", mock.Anything, "b1").Return(true, nil)
	repo.On("Unsynced", mock.Anything, "b1").Return(batch, nil)
	remote.On("PushBatch", mock.Anything, mock.MatchedBy(func(b *Batch) bool {
		return b.BranchID == "b1" && len(b.Orders) == 1
	})).Return(&PushResponse{Results: map[string]EntityResult{
		EntityShifts:   {Success: 1},
		EntitySales:    {Success: 2, IDs: []string{"v1", "v3"}},
		EntityExpenses: {Success: 0},
	}}, nil)
	repo.On("AckSynced", mock.Anything, EntityShifts, []Ack{{ID: "s1", Revision: 2}}).Return(1, nil)
	repo.On("AckSynced", mock.Anything, EntitySales, []Ack{{ID: "v1"}, {ID: "v3", Revision: 1}}).Return(2, nil)

	res, err := svc.Push(context.Background(), "b1")

	require.NoError(t, err)
	assert.Equal(t, 5, res.Sent)
	assert.Equal(t, map[string]int{EntityShifts: 1, EntitySales: 2}, res.Acked)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "AckSynced", mock.Anything, EntityExpenses, mock.Anything)
}

func TestService_Push_RowChangedInFlight(t *testing.T) {
	svc, repo, remote := newTestService()

	batch := &Batch{Shifts: []shift.Shift{{ID: "s1"}}}
	batch.SetRevision(EntityShifts, "s1", 0)
	repo.On("BranchExists", mock.Anything, "b1").Return(true, nil)
	repo.On("Unsynced", mock.Anything, "b1").Return(batch, nil)
	remote.On("PushBatch", mock.Anything, mock.Anything).Return(&PushResponse{Results: map[string]EntityResult{
		EntityShifts: {Success: 1},
	}}, nil)
	// смена закрыта локально, пока пакет был в облаке
	repo.On("AckSynced", mock.Anything, EntityShifts, []Ack{{ID: "s1", Revision: 0}}).Return(0, nil)

	res, err := svc.Push(context.Background(), "b1")

	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Empty(t, res.Acked)
	repo.AssertExpectations(t)
}

func TestService_Push_UnknownBranch(t *testing.T) {
	svc, repo, remote := newTestService()
	repo.On("BranchExists", mock.Anything, "b9").Return(false, nil)

	_, err := svc.Push(context.Background(), "b9")

	assert.ErrorIs(t, err, ErrUnknownBranch)
	remote.AssertNotCalled(t, "PushBatch", mock.Anything, mock.Anything)
}

func TestService_Push_NothingToSend(t *testing.T) {
	svc, repo, remote := newTestService()
	repo.On("BranchExists", mock.Anything, "b1").Return(true, nil)
	repo.On("Unsynced", mock.Anything, "b1").Return(&Batch{}, nil)

	res, err := svc.Push(context.Background(), "b1")

	require.NoError(t, err)
	assert.Zero(t, res.Sent)
	remote.AssertNotCalled(t, "PushBatch", mock.Anything, mock.Anything)
}

func TestService_Push_RemoteFailureKeepsRowsDirty(t *testing.T) {
	svc, repo, remote := newTestService()
	repo.On("BranchExists", mock.Anything, "b1").Return(true, nil)
	repo.On("Unsynced", mock.Anything, "b1").Return(&Batch{Sales: []sale.Sale{{ID: "v1"}}}, nil)
	remote.On("PushBatch", mock.Anything, mock.Anything).Return(nil, errors.New("502 bad gateway"))

	_, err := svc.Push(context.Background(), "b1")

	assert.Error(t, err)
	repo.AssertNotCalled(t, "AckSynced", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_PullAndPushAreSerialized(t *testing.T) {
	svc, repo, remote := newTestService()

	release := make(chan struct{})
	entered := make(chan struct{})
	remote.On("FetchSnapshot", mock.Anything, "b1", 7).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&Snapshot{}, nil)
	repo.On("ApplySnapshot", mock.Anything, "b1", mock.Anything).Return(&ApplyStats{}, nil)
	repo.On("Prune", mock.Anything, mock.Anything).Return(int64(0), nil)
	repo.On("BranchExists", mock.Anything, "b1").Return(true, nil)
	repo.On("Unsynced", mock.Anything, "b1").Return(&Batch{}, nil)

	go func() {
		_, _ = svc.Pull(context.Background(), "b1")
	}()
	<-entered

	pushed := make(chan struct{})
	go func() {
		_, _ = svc.Push(context.Background(), "b1")
		close(pushed)
	}()

	select {
	case <-pushed:
		t.Fatal("push ran while pull was in progress")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("push did not run after pull finished")
	}
}

func TestService_MarkSynced(t *testing.T) {
	svc, repo, _ := newTestService()

	repo.On("MarkSynced", mock.Anything, EntitySales, []string{"s1", "s2"}).Return(nil)

	n, err := svc.MarkSynced(context.Background(), EntitySales, []string{"s1", "s2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = svc.MarkSynced(context.Background(), "orders", []string{"o1"})
	assert.ErrorIs(t, err, ErrUnknownEntity)
	repo.AssertNumberOfCalls(t, "MarkSynced", 1)
}

func TestService_Prune(t *testing.T) {
	svc, repo, _ := newTestService()

	repo.On("Prune", mock.Anything, fixedNow.AddDate(0, 0, -30)).Return(int64(4), nil).Once()
	repo.On("Prune", mock.Anything, fixedNow.AddDate(0, 0, -7)).Return(int64(1), nil).Once()

	n, err := svc.Prune(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = svc.Prune(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	repo.AssertExpectations(t)
}
