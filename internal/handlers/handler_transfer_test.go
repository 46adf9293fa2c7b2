package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
	"github.com/k3rn3l808/swift_sim_backend/internal/dto"
	"github.com/k3rn3l808/swift_sim_backend/internal/handlers"
	"github.com/k3rn3l808/swift_sim_backend/internal/middleware"
)

// --- Mock TransferService ---
type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) GetTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

func (m *MockTransferService) ListTransfers(ctx context.Context, params dto.ListTransfersParams) ([]domain.Transfer, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transfer), args.Error(1)
}

func (m *MockTransferService) GetTransferStats(ctx context.Context) (*dto.TransferStatsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TransferStatsResponse), args.Error(1)
}

func (m *MockTransferService) CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, creatorUserID string) (*domain.Transfer, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

func (m *MockTransferService) AdvanceStage(ctx context.Context, transferID string, actorUserID string) (*dto.AdvanceStageResponse, error) {
	args := m.Called(ctx, transferID, actorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AdvanceStageResponse), args.Error(1)
}

func (m *MockTransferService) ApplyAction(ctx context.Context, req dto.TransferActionRequest, actorUserID string) (*dto.ActionResponse, error) {
	args := m.Called(ctx, req, actorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ActionResponse), args.Error(1)
}

func (m *MockTransferService) ApplyBulkAction(ctx context.Context, req dto.BulkTransferActionRequest, actorUserID string) (*dto.BulkActionResponse, error) {
	args := m.Called(ctx, req, actorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BulkActionResponse), args.Error(1)
}

func (m *MockTransferService) ToggleAutoProgression(ctx context.Context, transferID string, enable bool, actorUserID string) (*dto.ToggleAutoProgressionResponse, error) {
	args := m.Called(ctx, transferID, enable, actorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ToggleAutoProgressionResponse), args.Error(1)
}

func (m *MockTransferService) AutoAdvanceStage(ctx context.Context, transferID string) (*domain.Transfer, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.TransferSvcFacade = (*MockTransferService)(nil)

// --- Test Suite ---
type TransferHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockTransferService *MockTransferService
	jwtSecret           string
}

func TestTransferHandler(t *testing.T) {
	suite.Run(t, new(TransferHandlerTestSuite))
}

func (suite *TransferHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockTransferService = new(MockTransferService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterTransferRoutes(v1, suite.mockTransferService)
}

// generateTestToken creates a signed JWT for the given user.
func (suite *TransferHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "sws-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *TransferHandlerTestSuite) doJSON(method, url, userID string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func sampleCreateRequest() dto.CreateTransferRequest {
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

func sampleTransfer(userID string) *domain.Transfer {
	now := time.Now().UTC()
	stage, _ := domain.StageAt(0)
	t := &domain.Transfer{
		TransferID:          uuid.NewString(),
		Date:                now,
		SenderName:          "Acme Industries",
		SenderBIC:           "DEUTDEFF",
		ReceiverName:        "Globex Corp",
		ReceiverBIC:         "CHASUS33",
		TransferType:        domain.TransferTypeSwiftMT,
		Amount:              decimal.NewFromInt(5_000),
		Currency:            "USD",
		Reference:           "INV-2025-001",
		Purpose:             "Invoice payment",
		Status:              domain.TransferStatusPending,
		CreatedBy:           userID,
		CurrentStage:        stage.Name,
		Location:            stage.Location,
		EstimatedCompletion: now.Add(domain.TotalPipelineDuration()),
		AutoProgression:     true,
		Version:             1,
	}
	t.Stages = domain.InitStageProgress(t, now)
	return t
}

// --- Test Cases ---

func (suite *TransferHandlerTestSuite) TestCreateTransferSuccess() {
	userID := uuid.NewString()
	expected := sampleTransfer(userID)

	suite.mockTransferService.On("CreateTransfer",
		mock.Anything,
		mock.MatchedBy(func(r dto.CreateTransferRequest) bool {
			return r.SenderBIC == "DEUTDEFF" && r.Reference == "INV-2025-001"
		}),
		userID,
	).Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers", userID, sampleCreateRequest())

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransferResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.TransferID, resp.TransferID)
	suite.Equal(domain.TransferStatusPending, resp.Status)
	suite.True(resp.AutoProgression)
	suite.mockTransferService.AssertExpectations(suite.T())
}

func (suite *TransferHandlerTestSuite) TestCreateTransferInvalidBIC() {
	userID := uuid.NewString()
	req := sampleCreateRequest()
	req.SenderBIC = "not-a-bic"

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers", userID, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTransferService.AssertNotCalled(suite.T(), "CreateTransfer")
}

func (suite *TransferHandlerTestSuite) TestCreateTransferInvalidType() {
	userID := uuid.NewString()
	req := sampleCreateRequest()
	req.TransferType = "TELEX"

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers", userID, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTransferService.AssertNotCalled(suite.T(), "CreateTransfer")
}

func (suite *TransferHandlerTestSuite) TestCreateTransferForbidden() {
	userID := uuid.NewString()

	suite.mockTransferService.On("CreateTransfer", mock.Anything, mock.Anything, userID).
		Return(nil, apperrors.ErrForbidden).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers", userID, sampleCreateRequest())

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TransferHandlerTestSuite) TestCreateTransferUnauthenticated() {
	w := suite.doJSON(http.MethodPost, "/api/v1/transfers", "", sampleCreateRequest())

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockTransferService.AssertNotCalled(suite.T(), "CreateTransfer")
}

func (suite *TransferHandlerTestSuite) TestGetTransferSuccess() {
	userID := uuid.NewString()
	expected := sampleTransfer(userID)

	suite.mockTransferService.On("GetTransferByID", mock.Anything, expected.TransferID).
		Return(expected, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/transfers/"+expected.TransferID, userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TransferResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.TransferID, resp.TransferID)
	suite.Len(resp.Stages, domain.StageCount())
}

func (suite *TransferHandlerTestSuite) TestGetTransferNotFound() {
	userID := uuid.NewString()

	suite.mockTransferService.On("GetTransferByID", mock.Anything, "missing").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/transfers/missing", userID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TransferHandlerTestSuite) TestListTransfersPassesFilters() {
	userID := uuid.NewString()

	suite.mockTransferService.On("ListTransfers",
		mock.Anything,
		mock.MatchedBy(func(p dto.ListTransfersParams) bool {
			return p.Status == "pending" && p.TransferType == "SWIFT-MT" && p.Limit == 10
		}),
	).Return([]domain.Transfer{*sampleTransfer(userID)}, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/transfers?status=pending&transfer_type=SWIFT-MT&limit=10", userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.TransferResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp, 1)
	suite.mockTransferService.AssertExpectations(suite.T())
}

func (suite *TransferHandlerTestSuite) TestAdvanceStageSuccess() {
	userID := uuid.NewString()
	transferID := uuid.NewString()
	expected := &dto.AdvanceStageResponse{
		TransferID:    transferID,
		PreviousStage: "Initiated",
		NewStage:      "Validation",
		StageIndex:    1,
		Status:        domain.TransferStatusPending,
	}

	suite.mockTransferService.On("AdvanceStage", mock.Anything, transferID, userID).
		Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers/"+transferID+"/advance", userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AdvanceStageResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Validation", resp.NewStage)
	suite.Equal(1, resp.StageIndex)
}

func (suite *TransferHandlerTestSuite) TestAdvanceStageTerminalConflict() {
	userID := uuid.NewString()
	transferID := uuid.NewString()

	suite.mockTransferService.On("AdvanceStage", mock.Anything, transferID, userID).
		Return(nil, apperrors.ErrTerminalStage).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers/"+transferID+"/advance", userID, nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *TransferHandlerTestSuite) TestApplyActionSuccess() {
	userID := uuid.NewString()
	transferID := uuid.NewString()
	reqBody := dto.TransferActionRequest{TransferID: transferID, Action: "reject", Notes: "sanctions hit"}
	expected := &dto.ActionResponse{
		Action:     "reject",
		TransferID: transferID,
		Status:     "success",
		Message:    "reject applied",
	}

	suite.mockTransferService.On("ApplyAction", mock.Anything, reqBody, userID).
		Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers/action", userID, reqBody)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ActionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("success", resp.Status)
}

func (suite *TransferHandlerTestSuite) TestApplyActionInvalidVerb() {
	userID := uuid.NewString()
	reqBody := dto.TransferActionRequest{TransferID: uuid.NewString(), Action: "escalate"}

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers/action", userID, reqBody)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTransferService.AssertNotCalled(suite.T(), "ApplyAction")
}

func (suite *TransferHandlerTestSuite) TestApplyBulkActionSuccess() {
	userID := uuid.NewString()
	ids := []string{uuid.NewString(), uuid.NewString()}
	reqBody := dto.BulkTransferActionRequest{TransferIDs: ids, Action: "hold", Notes: "batch review"}
	expected := &dto.BulkActionResponse{
		Action:         "hold",
		TotalRequested: 2,
		Successful:     2,
		Message:        "hold applied to 2 of 2 transfers",
	}

	suite.mockTransferService.On("ApplyBulkAction", mock.Anything, reqBody, userID).
		Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers/bulk-action", userID, reqBody)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BulkActionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(2, resp.Successful)
	suite.Equal(0, resp.Failed)
}

func (suite *TransferHandlerTestSuite) TestToggleAutoProgression() {
	userID := uuid.NewString()
	transferID := uuid.NewString()
	enabled := false
	expected := &dto.ToggleAutoProgressionResponse{
		TransferID:      transferID,
		AutoProgression: false,
		Status:          "success",
	}

	suite.mockTransferService.On("ToggleAutoProgression", mock.Anything, transferID, false, userID).
		Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers/"+transferID+"/auto-progression", userID,
		dto.ToggleAutoProgressionRequest{Enabled: &enabled})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ToggleAutoProgressionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.AutoProgression)
}

func (suite *TransferHandlerTestSuite) TestToggleAutoProgressionMissingBody() {
	userID := uuid.NewString()

	w := suite.doJSON(http.MethodPost, "/api/v1/transfers/"+uuid.NewString()+"/auto-progression", userID,
		map[string]any{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTransferService.AssertNotCalled(suite.T(), "ToggleAutoProgression")
}

func (suite *TransferHandlerTestSuite) TestGetTransferStats() {
	userID := uuid.NewString()
	expected := &dto.TransferStatsResponse{
		TotalTransfers: 3,
		TotalAmount:    decimal.NewFromInt(15_000),
		StatusBreakdown: map[string]int64{
			"pending":   2,
			"completed": 1,
		},
		Pending:   2,
		Completed: 1,
	}

	suite.mockTransferService.On("GetTransferStats", mock.Anything).
		Return(expected, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/transfers/stats", userID, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TransferStatsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(3), resp.TotalTransfers)
	suite.True(resp.TotalAmount.Equal(decimal.NewFromInt(15_000)))
}
