package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portsrepo "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/repositories"
	"github.com/k3rn3l808/swift_sim_backend/internal/dto"
)

// fakeTransferRepo is an in-memory transfer store with the same version
// semantics as the postgres repository. Shared by the service and scheduler
// tests, which need stateful sequences of reads and writes.
type fakeTransferRepo struct {
	mu        sync.Mutex
	transfers map[string]domain.Transfer

	// updateHook, when set, intercepts UpdateTransfer before the version
	// check. Used to inject conflicts and storage failures.
	updateHook func(*domain.Transfer) error
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[string]domain.Transfer)}
}

var _ portsrepo.TransferRepositoryFacade = (*fakeTransferRepo)(nil)

func (f *fakeTransferRepo) SaveTransfer(ctx context.Context, transfer domain.Transfer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.transfers[transfer.TransferID]; ok {
		return apperrors.ErrDuplicate
	}
	if transfer.Version == 0 {
		transfer.Version = 1
	}
	f.transfers[transfer.TransferID] = transfer
	return nil
}

func (f *fakeTransferRepo) FindTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transfers[transferID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTransferRepo) UpdateTransfer(ctx context.Context, transfer domain.Transfer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateHook != nil {
		if err := f.updateHook(&transfer); err != nil {
			return err
		}
	}
	stored, ok := f.transfers[transfer.TransferID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if stored.Version != transfer.Version {
		return apperrors.ErrConflict
	}
	transfer.Version++
	f.transfers[transfer.TransferID] = transfer
	return nil
}

func (f *fakeTransferRepo) ListTransfers(ctx context.Context, filter portsrepo.TransferFilter, limit int) ([]domain.Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transfer
	for _, t := range f.transfers {
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		if filter.TransferType != "" && string(t.TransferType) != filter.TransferType {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTransferRepo) CountTransfers(ctx context.Context, filter portsrepo.TransferFilter) (int64, error) {
	all, _ := f.ListTransfers(ctx, filter, 0)
	return int64(len(all)), nil
}

func (f *fakeTransferRepo) AggregateByStatus(ctx context.Context) (map[domain.TransferStatus]portsrepo.StatusAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[domain.TransferStatus]portsrepo.StatusAggregate)
	for _, t := range f.transfers {
		agg := out[t.Status]
		agg.Count++
		agg.TotalAmount = agg.TotalAmount.Add(t.Amount)
		out[t.Status] = agg
	}
	return out, nil
}

// mutate edits a stored transfer in place, bypassing version checks. Test
// setup only.
func (f *fakeTransferRepo) mutate(transferID string, fn func(*domain.Transfer)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.transfers[transferID]
	fn(&t)
	f.transfers[transferID] = t
}

// fakeUserRepo is an in-memory user store.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

var _ portsrepo.UserRepositoryFacade = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) SaveUser(ctx context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperrors.ErrDuplicate
		}
	}
	f.users[user.UserID] = user
	return nil
}

func (f *fakeUserRepo) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok || u.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username && u.DeletedAt == nil {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) FindUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		if u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.UserID]; !ok {
		return apperrors.ErrNotFound
	}
	f.users[user.UserID] = user
	return nil
}

func (f *fakeUserRepo) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deleterUserID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.DeletedAt = &deletedAt
	u.LastUpdatedAt = deletedAt
	u.LastUpdatedBy = deleterUserID
	f.users[userID] = u
	return nil
}

// seedUser inserts a user directly, bypassing service checks.
func (f *fakeUserRepo) seedUser(userID, username string, role domain.UserRole) domain.User {
	u := domain.User{
		UserID:   userID,
		Username: username,
		FullName: username,
		Role:     role,
		Email:    username + "@example.com",
		AuditFields: domain.AuditFields{
			CreatedAt:     time.Now().UTC(),
			CreatedBy:     userID,
			LastUpdatedAt: time.Now().UTC(),
			LastUpdatedBy: userID,
		},
	}
	f.mu.Lock()
	f.users[userID] = u
	f.mu.Unlock()
	return u
}

// stubPublisher records published events.
type stubPublisher struct {
	mu       sync.Mutex
	created  int
	advanced int
	actions  int
}

func (s *stubPublisher) PublishTransferCreated(ctx context.Context, t *domain.Transfer) {
	s.mu.Lock()
	s.created++
	s.mu.Unlock()
}

func (s *stubPublisher) PublishStageAdvanced(ctx context.Context, t *domain.Transfer, previousStage string, automatic bool) {
	s.mu.Lock()
	s.advanced++
	s.mu.Unlock()
}

func (s *stubPublisher) PublishActionApplied(ctx context.Context, t *domain.Transfer, action domain.TransferAction, actorUserID string) {
	s.mu.Lock()
	s.actions++
	s.mu.Unlock()
}

func (s *stubPublisher) counts() (created, advanced, actions int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created, s.advanced, s.actions
}

// stubScheduler records start/stop calls.
type stubScheduler struct {
	mu      sync.Mutex
	started []string
	stopped []string
}

func (s *stubScheduler) Start(transferID string) {
	s.mu.Lock()
	s.started = append(s.started, transferID)
	s.mu.Unlock()
}

func (s *stubScheduler) Stop(transferID string) bool {
	s.mu.Lock()
	s.stopped = append(s.stopped, transferID)
	s.mu.Unlock()
	return true
}

func (s *stubScheduler) Shutdown(ctx context.Context) error { return nil }

// dtoCreateRequest is a valid creation payload shared across test suites.
func dtoCreateRequest() dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		SenderName:   "Acme Industries",
		SenderBIC:    "DEUTDEFF",
		ReceiverName: "Globex Corp",
		ReceiverBIC:  "CHASUS33",
		TransferType: string(domain.TransferTypeSwiftMT),
		Amount:       decimal.NewFromInt(5_000),
		Currency:     "USD",
		Reference:    "INV-2025-001",
		Purpose:      "Invoice payment",
	}
}
