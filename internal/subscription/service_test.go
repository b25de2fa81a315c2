package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID int, plan Plan) (*Subscription, error) {
	args := m.Called(ctx, userID, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockRepository) GetActiveByUser(ctx context.Context, userID int) (*Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockRepository) HasActive(ctx context.Context, userID int) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID int) ([]Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Subscription), args.Error(1)
}

func (m *MockRepository) Activate(ctx context.Context, id int, paymentID string) (*Subscription, error) {
	args := m.Called(ctx, id, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockRepository) ActivateTx(ctx context.Context, tx *sqlx.Tx, id int, paymentID string) (*Subscription, error) {
	args := m.Called(ctx, tx, id, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockRepository) Cancel(ctx context.Context, id, userID int) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockRepository) ExpireSweep(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func TestService_Purchase(t *testing.T) {
	tests := []struct {
		name      string
		planType  string
		setupMock func(*MockRepository)
		wantErr   error
	}{
		{
			name:     "one month plan",
			planType: "ONE_MONTH",
			setupMock: func(m *MockRepository) {
				m.On("Create", mock.Anything, 1, mock.MatchedBy(func(p Plan) bool {
					return p.Type == PlanOneMonth && p.Price == 29.99 && p.Tier == "BASIC"
				})).Return(&Subscription{ID: 7, UserID: 1, PlanType: PlanOneMonth, Status: StatusPending}, nil)
			},
		},
		{
			name:     "one year plan",
			planType: "ONE_YEAR",
			setupMock: func(m *MockRepository) {
				m.On("Create", mock.Anything, 1, mock.MatchedBy(func(p Plan) bool {
					return p.Type == PlanOneYear && p.Price == 249.99 && p.Tier == "ELITE"
				})).Return(&Subscription{ID: 8, UserID: 1, PlanType: PlanOneYear, Status: StatusPending}, nil)
			},
		},
		{
			name:      "unknown plan",
			planType:  "FOREVER",
			setupMock: func(m *MockRepository) {},
			wantErr:   ErrUnknownPlan,
		},
		{
			name:     "already subscribed",
			planType: "SIX_MONTHS",
			setupMock: func(m *MockRepository) {
				m.On("Create", mock.Anything, 1, mock.Anything).Return(nil, ErrAlreadyActive)
			},
			wantErr: ErrAlreadyActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.setupMock(mockRepo)
			service := NewService(mockRepo, time.Hour)

			sub, err := service.Purchase(context.Background(), 1, tt.planType)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, sub)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, StatusPending, sub.Status)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_Cancel(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("Cancel", mock.Anything, 7, 1).Return(nil)

	service := NewService(mockRepo, time.Hour)
	err := service.Cancel(context.Background(), 7, 1)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestService_ExpireSweep(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("ExpireSweep", mock.Anything).Return(int64(3), nil)

	service := NewService(mockRepo, time.Hour)
	n, err := service.ExpireSweep(context.Background())

	assert.NoError(t, err)
	assert.EqualValues(t, 3, n)
	mockRepo.AssertExpectations(t)
}

func TestService_CleanupStalePending(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("CancelStalePending", mock.Anything, time.Hour).Return(int64(2), nil)

	service := NewService(mockRepo, time.Hour)
	n, err := service.CleanupStalePending(context.Background())

	assert.NoError(t, err)
	assert.EqualValues(t, 2, n)
	mockRepo.AssertExpectations(t)
}

func TestPlanEndDates(t *testing.T) {
	for _, tc := range []struct {
		plan   PlanType
		months int
	}{
		{PlanOneMonth, 1},
		{PlanSixMonths, 6},
		{PlanOneYear, 12},
	} {
		plan, ok := PlanFor(tc.plan)
		assert.True(t, ok)
		assert.Equal(t, tc.months, plan.Months)
	}

	_, ok := PlanFor("LIFETIME")
	assert.False(t, ok)
}
