package checkout_return_controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourvia/booking-service/models/product_models"
	"github.com/tourvia/booking-service/models/reservation_models"
	"github.com/tourvia/booking-service/models/shared_models"
)

// fakeStore mirrors the idempotent, monotonic update rule of the real
// record store.
type fakeStore struct {
	records     map[uuid.UUID]*reservation_models.Reservation
	updateErr   error
	updateCalls int
}

func newFakeStore(rs ...*reservation_models.Reservation) *fakeStore {
	s := &fakeStore{records: make(map[uuid.UUID]*reservation_models.Reservation)}
	for _, r := range rs {
		s.records[r.ID] = r
	}
	return s
}

func (f *fakeStore) UpdateReservationStatus(_ context.Context, id uuid.UUID, sessionID *string, status shared_models.PaymentStatus) (*reservation_models.Reservation, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	r, ok := f.records[id]
	if !ok {
		return nil, reservation_models.ErrReservationNotFound
	}
	if !r.PaymentStatus.CanTransitionTo(status) {
		return nil, reservation_models.ErrStatusConflict
	}
	r.PaymentStatus = status
	if sessionID != nil {
		r.PaymentSessionID = sessionID
	}
	return r, nil
}

type fakeCatalog struct {
	products map[uuid.UUID]*product_models.Product
}

func (f *fakeCatalog) GetProductByID(_ context.Context, id uuid.UUID) (*product_models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, product_models.ErrProductNotFound
	}
	return p, nil
}

type fakeMailer struct {
	sent []uuid.UUID
	err  error
}

func (m *fakeMailer) SendBookingConfirmation(r *reservation_models.Reservation) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, r.ID)
	return nil
}

const baseURL = "https://tours.example.com"

func pendingReservation(productID uuid.UUID) *reservation_models.Reservation {
	return &reservation_models.Reservation{
		ID:            uuid.New(),
		ProductID:     productID,
		FullCount:     2,
		ReducedCount:  1,
		Email:         "ada@example.com",
		TotalPrice:    250,
		DepositAmount: 50,
		PaymentStatus: shared_models.StatusPendingCheckout,
	}
}

func testRouter(svc *ReconcileService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/checkout/return", svc.HandleReturn)
	return r
}

func returnRequest(reservationID, status, sessionID string) *http.Request {
	req, _ := http.NewRequest("GET", "/checkout/return", nil)
	q := req.URL.Query()
	if reservationID != "" {
		q.Set(ParamReservationID, reservationID)
	}
	if status != "" {
		q.Set(ParamStatus, status)
	}
	if sessionID != "" {
		q.Set(ParamSessionID, sessionID)
	}
	req.URL.RawQuery = q.Encode()
	return req
}

func TestHandleReturnSuccess(t *testing.T) {
	product := &product_models.Product{ID: uuid.New(), PagePath: "/tours/glacier-hike", IsActive: true}
	reservation := pendingReservation(product.ID)
	store := newFakeStore(reservation)
	catalog := &fakeCatalog{products: map[uuid.UUID]*product_models.Product{product.ID: product}}
	mailer := &fakeMailer{}

	svc := NewReconcileService(store, catalog, nil, baseURL)
	svc.Mailer = mailer
	var notified *reservation_models.Reservation
	svc.OnPaymentSucceeded = func(r *reservation_models.Reservation) { notified = r }

	w := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(w, returnRequest(reservation.ID.String(), "success", "cs_test_abc"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, baseURL+"/tours/glacier-hike?checkout=success", w.Header().Get("Location"))

	assert.Equal(t, shared_models.StatusSucceeded, reservation.PaymentStatus)
	require.NotNil(t, reservation.PaymentSessionID)
	assert.Equal(t, "cs_test_abc", *reservation.PaymentSessionID)

	require.NotNil(t, notified)
	assert.Equal(t, reservation.ID, notified.ID)
	assert.Equal(t, []uuid.UUID{reservation.ID}, mailer.sent)
}

func TestHandleReturnCancelled(t *testing.T) {
	product := &product_models.Product{ID: uuid.New(), PagePath: "tours/glacier-hike", IsActive: true}
	reservation := pendingReservation(product.ID)
	store := newFakeStore(reservation)
	catalog := &fakeCatalog{products: map[uuid.UUID]*product_models.Product{product.ID: product}}
	mailer := &fakeMailer{}

	svc := NewReconcileService(store, catalog, nil, baseURL)
	svc.Mailer = mailer
	svc.OnPaymentSucceeded = func(*reservation_models.Reservation) {
		t.Fatal("success callback invoked for a cancelled checkout")
	}

	w := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(w, returnRequest(reservation.ID.String(), "cancelled", "cs_test_abc"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, baseURL+"/tours/glacier-hike?checkout=cancelled", w.Header().Get("Location"))
	assert.Equal(t, shared_models.StatusCancelled, reservation.PaymentStatus)
	assert.Empty(t, mailer.sent)
}

func TestHandleReturnUnrecognizedStatus(t *testing.T) {
	reservation := pendingReservation(uuid.New())
	store := newFakeStore(reservation)
	svc := NewReconcileService(store, &fakeCatalog{}, nil, baseURL)

	w := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(w, returnRequest(reservation.ID.String(), "paid", "cs_test_abc"))

	// Recorded as unknown, never dropped; the admin resolves it later.
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, shared_models.StatusUnknown, reservation.PaymentStatus)
	assert.Contains(t, w.Header().Get("Location"), "?checkout=unknown")
}

func TestHandleReturnNoCheckoutParams(t *testing.T) {
	store := newFakeStore()
	svc := NewReconcileService(store, &fakeCatalog{}, nil, baseURL)

	w := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(w, returnRequest("", "", ""))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, baseURL+"/", w.Header().Get("Location"))
	assert.Equal(t, 0, store.updateCalls)
}

func TestHandleReturnInvalidReservationID(t *testing.T) {
	store := newFakeStore()
	svc := NewReconcileService(store, &fakeCatalog{}, nil, baseURL)

	w := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(w, returnRequest("not-a-uuid", "success", "cs_test_abc"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, store.updateCalls)
}

func TestHandleReturnNotFound(t *testing.T) {
	store := newFakeStore()
	svc := NewReconcileService(store, &fakeCatalog{}, nil, baseURL)

	w := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(w, returnRequest(uuid.New().String(), "success", "cs_test_abc"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleReturnPersistenceFailure(t *testing.T) {
	reservation := pendingReservation(uuid.New())
	store := newFakeStore(reservation)
	store.updateErr = errors.New("connection reset")
	svc := NewReconcileService(store, &fakeCatalog{}, nil, baseURL)

	w := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(w, returnRequest(reservation.ID.String(), "success", "cs_test_abc"))

	// No retry loop; the outcome stays ambiguous until an admin checks
	// the gateway records.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "RECONCILIATION_FAILED")
	assert.Equal(t, 1, store.updateCalls)
	assert.Equal(t, shared_models.StatusPendingCheckout, reservation.PaymentStatus)
}

func TestHandleReturnRefreshIsIdempotent(t *testing.T) {
	product := &product_models.Product{ID: uuid.New(), PagePath: "/tours/glacier-hike", IsActive: true}
	reservation := pendingReservation(product.ID)
	store := newFakeStore(reservation)
	catalog := &fakeCatalog{products: map[uuid.UUID]*product_models.Product{product.ID: product}}
	mailer := &fakeMailer{}

	svc := NewReconcileService(store, catalog, nil, baseURL)
	svc.Mailer = mailer
	router := testRouter(svc)

	req := returnRequest(reservation.ID.String(), "success", "cs_test_abc")

	first := httptest.NewRecorder()
	router.ServeHTTP(first, req)
	second := httptest.NewRecorder()
	router.ServeHTTP(second, req)

	// The refresh replays the same terminal status and succeeds without
	// changing the record.
	assert.Equal(t, http.StatusSeeOther, first.Code)
	assert.Equal(t, http.StatusSeeOther, second.Code)
	assert.Equal(t, first.Header().Get("Location"), second.Header().Get("Location"))
	assert.Equal(t, shared_models.StatusSucceeded, reservation.PaymentStatus)
	assert.Equal(t, 2, store.updateCalls)
}

func TestHandleReturnMailFailureDoesNotBreakRedirect(t *testing.T) {
	reservation := pendingReservation(uuid.New())
	store := newFakeStore(reservation)
	svc := NewReconcileService(store, &fakeCatalog{}, nil, baseURL)
	svc.Mailer = &fakeMailer{err: errors.New("smtp unavailable")}

	w := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(w, returnRequest(reservation.ID.String(), "success", "cs_test_abc"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, shared_models.StatusSucceeded, reservation.PaymentStatus)
}

func TestRedirectTargetFallsBackToBase(t *testing.T) {
	reservation := pendingReservation(uuid.New())
	store := newFakeStore(reservation)
	// Catalog knows nothing about the product.
	svc := NewReconcileService(store, &fakeCatalog{products: map[uuid.UUID]*product_models.Product{}}, nil, baseURL)

	w := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(w, returnRequest(reservation.ID.String(), "cancelled", "cs_test_abc"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, baseURL+"/?checkout=cancelled", w.Header().Get("Location"))
}
