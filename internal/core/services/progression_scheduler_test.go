package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/services"
)

type ProgressionSchedulerTestSuite struct {
	suite.Suite

	transferRepo *fakeTransferRepo
	userRepo     *fakeUserRepo
	service      *services.TransferService
	officer      domain.User
}

func (s *ProgressionSchedulerTestSuite) SetupTest() {
	s.transferRepo = newFakeTransferRepo()
	s.userRepo = newFakeUserRepo()

	riskSvc := services.NewRiskService(s.transferRepo)
	s.service = services.NewTransferService(s.transferRepo, s.userRepo, riskSvc, &stubPublisher{})

	s.officer = s.userRepo.seedUser("user-officer", "officer1", domain.RoleOfficer)
}

// newScheduler builds a scheduler with millisecond stage delays so pipelines
// drain quickly in tests.
func (s *ProgressionSchedulerTestSuite) newScheduler() *services.ProgressionScheduler {
	sched := services.NewProgressionScheduler(s.transferRepo, s.service, nil)
	sched.DelayFor = func(domain.StageDefinition) time.Duration { return time.Millisecond }
	return sched
}

func (s *ProgressionSchedulerTestSuite) stageIndex(transferID string) int {
	t, err := s.transferRepo.FindTransferByID(context.Background(), transferID)
	s.Require().NoError(err)
	return t.CurrentStageIndex
}

func (s *ProgressionSchedulerTestSuite) TestAutoProgressionHaltsAtAuthorization() {
	sched := s.newScheduler()
	s.service.SetScheduler(sched)
	defer sched.Shutdown(context.Background())

	transfer, err := s.service.CreateTransfer(context.Background(), dtoCreateRequest(), s.officer.UserID)
	s.Require().NoError(err)

	// INIT, VAL and AML auto-advance; the pipeline must stall at AUTH.
	s.Require().Eventually(func() bool {
		return s.stageIndex(transfer.TransferID) == 3
	}, 2*time.Second, 5*time.Millisecond)

	// Give the scheduler room to misbehave, then confirm it stayed put.
	time.Sleep(50 * time.Millisecond)
	s.Equal(3, s.stageIndex(transfer.TransferID))

	stored, err := s.transferRepo.FindTransferByID(context.Background(), transfer.TransferID)
	s.Require().NoError(err)
	s.Equal("Authorization", stored.CurrentStage)
	s.Equal(domain.TransferStatusPending, stored.Status)
}

func (s *ProgressionSchedulerTestSuite) TestResumesAfterManualAuthorization() {
	sched := s.newScheduler()
	s.service.SetScheduler(sched)
	defer sched.Shutdown(context.Background())

	transfer, err := s.service.CreateTransfer(context.Background(), dtoCreateRequest(), s.officer.UserID)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		return s.stageIndex(transfer.TransferID) == 3
	}, 2*time.Second, 5*time.Millisecond)

	// Officer authorizes; restarting the task lets the rest run to completion.
	_, err = s.service.AdvanceStage(context.Background(), transfer.TransferID, s.officer.UserID)
	s.Require().NoError(err)
	sched.Start(transfer.TransferID)

	s.Require().Eventually(func() bool {
		t, err := s.transferRepo.FindTransferByID(context.Background(), transfer.TransferID)
		return err == nil && t.Status == domain.TransferStatusCompleted
	}, 2*time.Second, 5*time.Millisecond)

	s.Equal(domain.FinalStageIndex(), s.stageIndex(transfer.TransferID))
}

func (s *ProgressionSchedulerTestSuite) TestDisablingAutoProgressionStopsTask() {
	sched := s.newScheduler()
	// Long delay so the transfer is still at INIT when we toggle.
	sched.DelayFor = func(domain.StageDefinition) time.Duration { return time.Hour }
	s.service.SetScheduler(sched)
	defer sched.Shutdown(context.Background())

	transfer, err := s.service.CreateTransfer(context.Background(), dtoCreateRequest(), s.officer.UserID)
	s.Require().NoError(err)

	_, err = s.service.ToggleAutoProgression(context.Background(), transfer.TransferID, false, s.officer.UserID)
	s.Require().NoError(err)

	// The task was cancelled, so stopping again reports nothing running.
	s.Require().Eventually(func() bool {
		return !sched.Stop(transfer.TransferID)
	}, 2*time.Second, 5*time.Millisecond)
	s.Equal(0, s.stageIndex(transfer.TransferID))
}

func (s *ProgressionSchedulerTestSuite) TestPersistedFlagCheckedOnWake() {
	sched := s.newScheduler()
	s.service.SetScheduler(sched)
	defer sched.Shutdown(context.Background())

	transfer, err := s.service.CreateTransfer(context.Background(), dtoCreateRequest(), s.officer.UserID)
	s.Require().NoError(err)

	// Flip the persisted flag directly; the next wake must observe it and
	// stop without advancing further.
	s.transferRepo.mutate(transfer.TransferID, func(t *domain.Transfer) {
		t.AutoProgression = false
	})

	time.Sleep(50 * time.Millisecond)
	idx := s.stageIndex(transfer.TransferID)
	time.Sleep(50 * time.Millisecond)
	s.Equal(idx, s.stageIndex(transfer.TransferID))
}

func (s *ProgressionSchedulerTestSuite) TestTerminalStatusStopsTask() {
	sched := s.newScheduler()
	sched.DelayFor = func(domain.StageDefinition) time.Duration { return 20 * time.Millisecond }
	s.service.SetScheduler(sched)
	defer sched.Shutdown(context.Background())

	transfer, err := s.service.CreateTransfer(context.Background(), dtoCreateRequest(), s.officer.UserID)
	s.Require().NoError(err)

	s.transferRepo.mutate(transfer.TransferID, func(t *domain.Transfer) {
		t.Status = domain.TransferStatusRejected
	})

	s.Require().Eventually(func() bool {
		return !sched.Stop(transfer.TransferID)
	}, 2*time.Second, 5*time.Millisecond)
	s.Equal(0, s.stageIndex(transfer.TransferID))
}

func (s *ProgressionSchedulerTestSuite) TestStartIsIdempotent() {
	sched := s.newScheduler()
	sched.DelayFor = func(domain.StageDefinition) time.Duration { return time.Hour }
	s.service.SetScheduler(sched)
	defer sched.Shutdown(context.Background())

	transfer, err := s.service.CreateTransfer(context.Background(), dtoCreateRequest(), s.officer.UserID)
	s.Require().NoError(err)

	// Repeated starts replace the task instead of stacking goroutines; a
	// single Stop clears the only task.
	sched.Start(transfer.TransferID)
	sched.Start(transfer.TransferID)

	s.True(sched.Stop(transfer.TransferID))
	s.Require().Eventually(func() bool {
		return !sched.Stop(transfer.TransferID)
	}, 2*time.Second, 5*time.Millisecond)
}

func (s *ProgressionSchedulerTestSuite) TestShutdownDrainsTasks() {
	sched := s.newScheduler()
	sched.DelayFor = func(domain.StageDefinition) time.Duration { return time.Hour }
	s.service.SetScheduler(sched)

	for i := 0; i < 3; i++ {
		_, err := s.service.CreateTransfer(context.Background(), dtoCreateRequest(), s.officer.UserID)
		s.Require().NoError(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Require().NoError(sched.Shutdown(ctx))

	// Starting after shutdown is a no-op.
	sched.Start("late")
	s.False(sched.Stop("late"))
}

func TestProgressionSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(ProgressionSchedulerTestSuite))
}
