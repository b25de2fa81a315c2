package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ritesh99494/Cloud-GYM/internal/booking"
	"github.com/Ritesh99494/Cloud-GYM/internal/subscription"
	"github.com/Ritesh99494/Cloud-GYM/internal/user"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) GetByPaymentIDForUpdate(ctx context.Context, tx *sqlx.Tx, paymentID string) (*Payment, error) {
	args := m.Called(ctx, tx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) RecordCallbackTx(ctx context.Context, tx *sqlx.Tx, id int, transactionID, paymentMethod, rawPayload string) error {
	args := m.Called(ctx, tx, id, transactionID, paymentMethod, rawPayload)
	return args.Error(0)
}

func (m *MockRepository) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id int, status Status) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockRepository) MarkStalePendingFailed(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID int) ([]Payment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Payment), args.Error(1)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, userID int, plan subscription.Plan) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id int) (*subscription.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetActiveByUser(ctx context.Context, userID int) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) HasActive(ctx context.Context, userID int) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) ListByUser(ctx context.Context, userID int) ([]subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Activate(ctx context.Context, id int, paymentID string) (*subscription.Subscription, error) {
	args := m.Called(ctx, id, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ActivateTx(ctx context.Context, tx *sqlx.Tx, id int, paymentID string) (*subscription.Subscription, error) {
	args := m.Called(ctx, tx, id, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Cancel(ctx context.Context, id, userID int) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ExpireSweep(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubscriptionRepository) CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateBooking(ctx context.Context, userID, timeSlotID int, date time.Time, status booking.Status, price float64, qrCode string) (*booking.Booking, error) {
	args := m.Called(ctx, userID, timeSlotID, date, status, price, qrCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetBookingByID(ctx context.Context, id int) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountConfirmedForSlotOnDate(ctx context.Context, timeSlotID int, date time.Time) (int, error) {
	args := m.Called(ctx, timeSlotID, date)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) GetSlotAvailability(ctx context.Context, gymID int, date time.Time) ([]booking.SlotAvailability, error) {
	args := m.Called(ctx, gymID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.SlotAvailability), args.Error(1)
}

func (m *MockBookingRepository) UserHasBookingForSlot(ctx context.Context, userID, timeSlotID int, date time.Time) (bool, error) {
	args := m.Called(ctx, userID, timeSlotID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) CancelBooking(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepository) ConfirmTx(ctx context.Context, tx *sqlx.Tx, id int) (*booking.Booking, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) CheckIn(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepository) Complete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepository) CancelStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) GetUserBookings(ctx context.Context, userID int) ([]booking.BookingWithDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.BookingWithDetails), args.Error(1)
}

func (m *MockBookingRepository) GetBookingsByTimeSlot(ctx context.Context, timeSlotID int) ([]booking.BookingWithDetails, error) {
	args := m.Called(ctx, timeSlotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.BookingWithDetails), args.Error(1)
}

func (m *MockBookingRepository) GetBookingsByGym(ctx context.Context, gymID int) ([]booking.BookingWithDetails, error) {
	args := m.Called(ctx, gymID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.BookingWithDetails), args.Error(1)
}

func (m *MockBookingRepository) GetGymStats(ctx context.Context, gymID int) (*booking.GymBookingStats, error) {
	args := m.Called(ctx, gymID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.GymBookingStats), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, username, email, passwordHash, contactNumber, role string) (*user.User, error) {
	args := m.Called(ctx, username, email, passwordHash, contactNumber, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func testConfig() Config {
	return Config{
		Currency:        "USD",
		RedirectBaseURL: "https://pay.example.com",
		PendingTimeout:  30 * time.Minute,
	}
}

func newTestService(t *testing.T, repo Repository, subRepo subscription.Repository, bookRepo booking.Repository) (Service, sqlmock.Sqlmock, func()) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	svc := NewService(sqlxDB, repo, subRepo, bookRepo, new(MockUserRepository), nil, testConfig())

	closer := func() { sqlxDB.Close() }
	return svc, dbMock, closer
}

func TestNewPaymentID(t *testing.T) {
	id := newPaymentID()
	assert.True(t, strings.HasPrefix(id, "PAY_"))
	assert.Len(t, id, 20)
	assert.Equal(t, strings.ToUpper(id), id)
	assert.NotEqual(t, id, newPaymentID())
}

func TestInitiateSubscriptionPayment_Success(t *testing.T) {
	repo := new(MockRepository)
	subRepo := new(MockSubscriptionRepository)
	svc, _, closer := newTestService(t, repo, subRepo, new(MockBookingRepository))
	defer closer()

	subRepo.On("GetByID", mock.Anything, 7).Return(&subscription.Subscription{
		ID:     7,
		UserID: 1,
		Status: subscription.StatusPending,
		Price:  29.99,
	}, nil)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *Payment) bool {
		return p.Type == TypeSubscription &&
			p.SubscriptionID != nil && *p.SubscriptionID == 7 &&
			p.Amount == 29.99 && p.Currency == "USD" &&
			strings.HasPrefix(p.PaymentID, "PAY_")
	})).Return(&Payment{
		ID:        3,
		PaymentID: "PAY_ABC123",
		UserID:    1,
		Amount:    29.99,
		Currency:  "USD",
		Status:    StatusPending,
	}, nil)

	resp, err := svc.InitiateSubscriptionPayment(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, "PAY_ABC123", resp.PaymentID)
	assert.Equal(t, "https://pay.example.com/pay/PAY_ABC123", resp.RedirectURL)
	assert.Equal(t, 29.99, resp.Amount)
	repo.AssertExpectations(t)
}

func TestInitiateSubscriptionPayment_NotOwner(t *testing.T) {
	repo := new(MockRepository)
	subRepo := new(MockSubscriptionRepository)
	svc, _, closer := newTestService(t, repo, subRepo, new(MockBookingRepository))
	defer closer()

	subRepo.On("GetByID", mock.Anything, 7).Return(&subscription.Subscription{
		ID:     7,
		UserID: 2,
		Status: subscription.StatusPending,
	}, nil)

	_, err := svc.InitiateSubscriptionPayment(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrNotOwner)
	repo.AssertNotCalled(t, "Create")
}

func TestInitiateSubscriptionPayment_AlreadyActive(t *testing.T) {
	repo := new(MockRepository)
	subRepo := new(MockSubscriptionRepository)
	svc, _, closer := newTestService(t, repo, subRepo, new(MockBookingRepository))
	defer closer()

	subRepo.On("GetByID", mock.Anything, 7).Return(&subscription.Subscription{
		ID:     7,
		UserID: 1,
		Status: subscription.StatusActive,
	}, nil)

	_, err := svc.InitiateSubscriptionPayment(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrNotPayable)
	repo.AssertNotCalled(t, "Create")
}

func TestInitiateBookingPayment_Success(t *testing.T) {
	repo := new(MockRepository)
	bookRepo := new(MockBookingRepository)
	svc, _, closer := newTestService(t, repo, new(MockSubscriptionRepository), bookRepo)
	defer closer()

	bookRepo.On("GetBookingByID", mock.Anything, 12).Return(&booking.Booking{
		ID:     12,
		UserID: 1,
		Status: booking.StatusPendingPayment,
		Price:  15.0,
	}, nil)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *Payment) bool {
		return p.Type == TypeBooking &&
			p.BookingID != nil && *p.BookingID == 12 &&
			p.Amount == 15.0
	})).Return(&Payment{
		ID:        4,
		PaymentID: "PAY_DEF456",
		UserID:    1,
		Amount:    15.0,
		Currency:  "USD",
		Status:    StatusPending,
	}, nil)

	resp, err := svc.InitiateBookingPayment(context.Background(), 1, 12)
	require.NoError(t, err)
	assert.Equal(t, "PAY_DEF456", resp.PaymentID)
	repo.AssertExpectations(t)
}

func TestInitiateBookingPayment_NotAwaitingPayment(t *testing.T) {
	repo := new(MockRepository)
	bookRepo := new(MockBookingRepository)
	svc, _, closer := newTestService(t, repo, new(MockSubscriptionRepository), bookRepo)
	defer closer()

	bookRepo.On("GetBookingByID", mock.Anything, 12).Return(&booking.Booking{
		ID:     12,
		UserID: 1,
		Status: booking.StatusConfirmed,
	}, nil)

	_, err := svc.InitiateBookingPayment(context.Background(), 1, 12)
	assert.ErrorIs(t, err, ErrNotPayable)
	repo.AssertNotCalled(t, "Create")
}

func TestProcessCallback_SubscriptionSuccess(t *testing.T) {
	repo := new(MockRepository)
	subRepo := new(MockSubscriptionRepository)
	svc, dbMock, closer := newTestService(t, repo, subRepo, new(MockBookingRepository))
	defer closer()

	subID := 7
	pending := &Payment{
		ID:             3,
		PaymentID:      "PAY_ABC",
		UserID:         1,
		Type:           TypeSubscription,
		SubscriptionID: &subID,
		Status:         StatusPending,
	}

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	rawPayload := `{"payment_id":"PAY_ABC","status":"SUCCESS","transaction_id":"TXN_1","payment_method":"card"}`

	repo.On("GetByPaymentIDForUpdate", mock.Anything, mock.Anything, "PAY_ABC").Return(pending, nil)
	repo.On("RecordCallbackTx", mock.Anything, mock.Anything, 3, "TXN_1", "card", rawPayload).Return(nil)
	repo.On("SetStatusTx", mock.Anything, mock.Anything, 3, StatusSuccess).Return(nil)
	subRepo.On("ActivateTx", mock.Anything, mock.Anything, 7, "PAY_ABC").Return(&subscription.Subscription{
		ID:       7,
		UserID:   1,
		PlanType: subscription.PlanOneMonth,
		Status:   subscription.StatusActive,
	}, nil)

	p, err := svc.ProcessCallback(context.Background(), CallbackRequest{
		PaymentID:     "PAY_ABC",
		Status:        "SUCCESS",
		TransactionID: "TXN_1",
		PaymentMethod: "card",
		Raw:           rawPayload,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, p.Status)
	repo.AssertExpectations(t)
	subRepo.AssertExpectations(t)
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestProcessCallback_BookingSuccess(t *testing.T) {
	repo := new(MockRepository)
	bookRepo := new(MockBookingRepository)
	svc, dbMock, closer := newTestService(t, repo, new(MockSubscriptionRepository), bookRepo)
	defer closer()

	bookingID := 12
	pending := &Payment{
		ID:        4,
		PaymentID: "PAY_DEF",
		UserID:    1,
		Type:      TypeBooking,
		BookingID: &bookingID,
		Status:    StatusPending,
	}

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	repo.On("GetByPaymentIDForUpdate", mock.Anything, mock.Anything, "PAY_DEF").Return(pending, nil)
	repo.On("RecordCallbackTx", mock.Anything, mock.Anything, 4, "TXN_2", "upi", mock.Anything).Return(nil)
	repo.On("SetStatusTx", mock.Anything, mock.Anything, 4, StatusSuccess).Return(nil)
	bookRepo.On("ConfirmTx", mock.Anything, mock.Anything, 12).Return(&booking.Booking{
		ID:     12,
		UserID: 1,
		Status: booking.StatusConfirmed,
	}, nil)

	p, err := svc.ProcessCallback(context.Background(), CallbackRequest{
		PaymentID:     "PAY_DEF",
		Status:        "SUCCESS",
		TransactionID: "TXN_2",
		PaymentMethod: "upi",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, p.Status)
	bookRepo.AssertExpectations(t)
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestProcessCallback_Failure(t *testing.T) {
	repo := new(MockRepository)
	subRepo := new(MockSubscriptionRepository)
	svc, dbMock, closer := newTestService(t, repo, subRepo, new(MockBookingRepository))
	defer closer()

	subID := 7
	pending := &Payment{
		ID:             3,
		PaymentID:      "PAY_ABC",
		UserID:         1,
		Type:           TypeSubscription,
		SubscriptionID: &subID,
		Status:         StatusPending,
	}

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	repo.On("GetByPaymentIDForUpdate", mock.Anything, mock.Anything, "PAY_ABC").Return(pending, nil)
	repo.On("RecordCallbackTx", mock.Anything, mock.Anything, 3, "TXN_1", "card", mock.Anything).Return(nil)
	repo.On("SetStatusTx", mock.Anything, mock.Anything, 3, StatusFailed).Return(nil)

	p, err := svc.ProcessCallback(context.Background(), CallbackRequest{
		PaymentID:     "PAY_ABC",
		Status:        "FAILED",
		TransactionID: "TXN_1",
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, p.Status)
	subRepo.AssertNotCalled(t, "ActivateTx")
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestProcessCallback_DuplicateIsNoOp(t *testing.T) {
	repo := new(MockRepository)
	subRepo := new(MockSubscriptionRepository)
	svc, dbMock, closer := newTestService(t, repo, subRepo, new(MockBookingRepository))
	defer closer()

	subID := 7
	settled := &Payment{
		ID:             3,
		PaymentID:      "PAY_ABC",
		UserID:         1,
		Type:           TypeSubscription,
		SubscriptionID: &subID,
		Status:         StatusSuccess,
	}

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	repo.On("GetByPaymentIDForUpdate", mock.Anything, mock.Anything, "PAY_ABC").Return(settled, nil)
	repo.On("RecordCallbackTx", mock.Anything, mock.Anything, 3, "TXN_REPLAY", "card", mock.Anything).Return(nil)

	p, err := svc.ProcessCallback(context.Background(), CallbackRequest{
		PaymentID:     "PAY_ABC",
		Status:        "SUCCESS",
		TransactionID: "TXN_REPLAY",
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, p.Status)
	repo.AssertNotCalled(t, "SetStatusTx")
	subRepo.AssertNotCalled(t, "ActivateTx")
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestProcessCallback_UnknownPayment(t *testing.T) {
	repo := new(MockRepository)
	svc, dbMock, closer := newTestService(t, repo, new(MockSubscriptionRepository), new(MockBookingRepository))
	defer closer()

	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	repo.On("GetByPaymentIDForUpdate", mock.Anything, mock.Anything, "PAY_NOPE").Return(nil, ErrPaymentNotFound)

	_, err := svc.ProcessCallback(context.Background(), CallbackRequest{
		PaymentID: "PAY_NOPE",
		Status:    "SUCCESS",
	})
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCleanupPendingPayments(t *testing.T) {
	repo := new(MockRepository)
	svc, _, closer := newTestService(t, repo, new(MockSubscriptionRepository), new(MockBookingRepository))
	defer closer()

	repo.On("MarkStalePendingFailed", mock.Anything, 30*time.Minute).Return(int64(2), nil)

	n, err := svc.CleanupPendingPayments(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	repo.AssertExpectations(t)
}

func TestGetPayment(t *testing.T) {
	repo := new(MockRepository)
	svc, _, closer := newTestService(t, repo, new(MockSubscriptionRepository), new(MockBookingRepository))
	defer closer()

	stored := &Payment{ID: 7, PaymentID: "PAY_AAAABBBBCCCCDDDD", UserID: 42, Status: StatusSuccess}
	repo.On("GetByPaymentID", mock.Anything, "PAY_AAAABBBBCCCCDDDD").Return(stored, nil)

	p, err := svc.GetPayment(context.Background(), 42, "PAY_AAAABBBBCCCCDDDD")
	require.NoError(t, err)
	assert.Equal(t, stored, p)
}

func TestGetPayment_NotOwner(t *testing.T) {
	repo := new(MockRepository)
	svc, _, closer := newTestService(t, repo, new(MockSubscriptionRepository), new(MockBookingRepository))
	defer closer()

	stored := &Payment{ID: 7, PaymentID: "PAY_AAAABBBBCCCCDDDD", UserID: 42}
	repo.On("GetByPaymentID", mock.Anything, "PAY_AAAABBBBCCCCDDDD").Return(stored, nil)

	_, err := svc.GetPayment(context.Background(), 99, "PAY_AAAABBBBCCCCDDDD")
	assert.ErrorIs(t, err, ErrNotOwner)
}
