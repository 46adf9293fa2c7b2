package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/services"
	"github.com/k3rn3l808/swift_sim_backend/internal/dto"
)

type UserServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	userRepo *fakeUserRepo
	svc      portssvc.UserSvcFacade
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.userRepo = newFakeUserRepo()
	s.svc = services.NewUserService(s.userRepo, services.SeedAdminConfig{
		Username: "kompx3",
		Password: "kompx3-secret-pw",
		FullName: "System Administrator",
		Email:    "admin@sws.local",
	})
	s.userRepo.seedUser("admin-1", "admin1", domain.RoleAdmin)
	s.userRepo.seedUser("cust-1", "customer1", domain.RoleCustomer)
}

func newUserRequest(username, role string) dto.CreateUserRequest {
	return dto.CreateUserRequest{
		Username: username,
		Password: "s3cret-pass",
		FullName: "Jordan Blake",
		Role:     role,
		Email:    username + "@example.com",
	}
}

func (s *UserServiceTestSuite) TestCreateUserAsAdmin() {
	user, err := s.svc.CreateUser(s.ctx, newUserRequest("officer9", "officer"), "admin-1")
	s.Require().NoError(err)

	s.Equal("officer9", user.Username)
	s.Equal(domain.RoleOfficer, user.Role)
	s.NotEmpty(user.UserID)
	s.Equal("admin-1", user.CreatedBy)
	s.NotEqual("s3cret-pass", user.PasswordHash)

	stored, err := s.userRepo.FindUserByUsername(s.ctx, "officer9")
	s.Require().NoError(err)
	s.Equal(user.UserID, stored.UserID)
}

func (s *UserServiceTestSuite) TestCreateUserForbiddenForNonAdmin() {
	_, err := s.svc.CreateUser(s.ctx, newUserRequest("officer9", "officer"), "cust-1")
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *UserServiceTestSuite) TestSelfRegistrationCustomerOnly() {
	user, err := s.svc.CreateUser(s.ctx, newUserRequest("walkin", "customer"), "")
	s.Require().NoError(err)
	s.Equal(domain.RoleCustomer, user.Role)
	// With no creator the account is attributed to itself.
	s.Equal(user.UserID, user.CreatedBy)

	_, err = s.svc.CreateUser(s.ctx, newUserRequest("sneaky", "admin"), "")
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *UserServiceTestSuite) TestCreateUserDuplicateUsername() {
	_, err := s.svc.CreateUser(s.ctx, newUserRequest("customer1", "customer"), "admin-1")
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *UserServiceTestSuite) TestAuthenticateUser() {
	created, err := s.svc.CreateUser(s.ctx, newUserRequest("teller2", "officer"), "admin-1")
	s.Require().NoError(err)

	user, err := s.svc.AuthenticateUser(s.ctx, "teller2", "s3cret-pass")
	s.Require().NoError(err)
	s.Equal(created.UserID, user.UserID)

	_, err = s.svc.AuthenticateUser(s.ctx, "teller2", "wrong-pass")
	s.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = s.svc.AuthenticateUser(s.ctx, "nobody", "s3cret-pass")
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *UserServiceTestSuite) TestUpdateUserSelfEdit() {
	name := "New Name"
	user, err := s.svc.UpdateUser(s.ctx, "cust-1", dto.UpdateUserRequest{FullName: &name}, "cust-1")
	s.Require().NoError(err)
	s.Equal("New Name", user.FullName)
	s.Equal("cust-1", user.LastUpdatedBy)
}

func (s *UserServiceTestSuite) TestUpdateUserRoleChangeRequiresAdmin() {
	role := "officer"
	_, err := s.svc.UpdateUser(s.ctx, "cust-1", dto.UpdateUserRequest{Role: &role}, "cust-1")
	s.ErrorIs(err, apperrors.ErrForbidden)

	user, err := s.svc.UpdateUser(s.ctx, "cust-1", dto.UpdateUserRequest{Role: &role}, "admin-1")
	s.Require().NoError(err)
	s.Equal(domain.RoleOfficer, user.Role)
}

func (s *UserServiceTestSuite) TestUpdateOtherUserRequiresAdmin() {
	name := "Hijack"
	_, err := s.svc.UpdateUser(s.ctx, "admin-1", dto.UpdateUserRequest{FullName: &name}, "cust-1")
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *UserServiceTestSuite) TestDeleteUser() {
	err := s.svc.DeleteUser(s.ctx, "cust-1", "admin-1")
	s.Require().NoError(err)

	_, err = s.svc.GetUserByID(s.ctx, "cust-1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *UserServiceTestSuite) TestDeleteUserForbiddenForNonAdmin() {
	s.ErrorIs(s.svc.DeleteUser(s.ctx, "admin-1", "cust-1"), apperrors.ErrForbidden)
}

func (s *UserServiceTestSuite) TestDeleteOwnAccountRejected() {
	s.ErrorIs(s.svc.DeleteUser(s.ctx, "admin-1", "admin-1"), apperrors.ErrValidation)
}

func (s *UserServiceTestSuite) TestEnsureSeedAdmin() {
	s.Require().NoError(s.svc.EnsureSeedAdmin(s.ctx))

	admin, err := s.svc.AuthenticateUser(s.ctx, "kompx3", "kompx3-secret-pw")
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, admin.Role)

	// Idempotent on a warm database.
	s.Require().NoError(s.svc.EnsureSeedAdmin(s.ctx))
	users, err := s.svc.ListUsers(s.ctx, 100, 0)
	s.Require().NoError(err)
	seen := 0
	for _, u := range users {
		if u.Username == "kompx3" {
			seen++
		}
	}
	s.Equal(1, seen)
}

func (s *UserServiceTestSuite) TestListUsersPagination() {
	users, err := s.svc.ListUsers(s.ctx, 1, 0)
	s.Require().NoError(err)
	s.Len(users, 1)

	users, err = s.svc.ListUsers(s.ctx, 10, 1)
	s.Require().NoError(err)
	s.Len(users, 1)
}
