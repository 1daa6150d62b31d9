package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "orderflow/internal/adapters/in/http"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDispatchSecret = "dispatch-secret"

type stubDispatchRunner struct {
	result commands.RunDispatchCycleResult
	err    error
	calls  int
}

func (s *stubDispatchRunner) Handle(
	_ context.Context,
	_ commands.RunDispatchCycleCommand,
) (commands.RunDispatchCycleResult, error) {
	s.calls++
	return s.result, s.err
}

type stubPaymentReconciler struct {
	outcome  commands.ReconcileOutcome
	err      error
	lastBody []byte
	lastSig  string
}

func (s *stubPaymentReconciler) Handle(
	_ context.Context,
	cmd commands.ReconcilePaymentCommand,
) (commands.ReconcileOutcome, error) {
	s.lastBody = cmd.RawBody()
	s.lastSig = cmd.SignatureHeader()
	return s.outcome, s.err
}

type stubIntentCreator struct {
	result commands.CreatePaymentIntentResult
	err    error
}

func (s *stubIntentCreator) Handle(
	_ context.Context,
	_ commands.CreatePaymentIntentCommand,
) (commands.CreatePaymentIntentResult, error) {
	return s.result, s.err
}

type stubPendingOrdersReader struct {
	result []queries.GetPendingOrdersQueryResponse
	err    error
}

func (s *stubPendingOrdersReader) Handle(
	_ context.Context,
	_ queries.GetPendingOrdersQuery,
) ([]queries.GetPendingOrdersQueryResponse, error) {
	return s.result, s.err
}

type stubAvailableCouriersReader struct {
	result []queries.GetAvailableCouriersQueryResponse
	err    error
}

func (s *stubAvailableCouriersReader) Handle(
	_ context.Context,
	_ queries.GetAvailableCouriersQuery,
) ([]queries.GetAvailableCouriersQueryResponse, error) {
	return s.result, s.err
}

type serverStubs struct {
	dispatchRunner    *stubDispatchRunner
	paymentReconciler *stubPaymentReconciler
	intentCreator     *stubIntentCreator
	pendingOrders     *stubPendingOrdersReader
	availableCouriers *stubAvailableCouriersReader
}

func newTestServer() (*httpadapter.Server, *serverStubs) {
	stubs := &serverStubs{
		dispatchRunner:    &stubDispatchRunner{},
		paymentReconciler: &stubPaymentReconciler{outcome: commands.OutcomeApplied},
		intentCreator:     &stubIntentCreator{},
		pendingOrders:     &stubPendingOrdersReader{},
		availableCouriers: &stubAvailableCouriersReader{},
	}

	server := httpadapter.NewServer(
		testDispatchSecret,
		10,
		stubs.dispatchRunner,
		stubs.paymentReconciler,
		stubs.intentCreator,
		stubs.pendingOrders,
		stubs.availableCouriers,
	)
	return server, stubs
}

func newEchoContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.Health(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRunDispatch_MissingSecret(t *testing.T) {
	server, stubs := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/dispatch/run", nil)
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.RunDispatch(ctx))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, stubs.dispatchRunner.calls)
}

func TestRunDispatch_WrongSecret(t *testing.T) {
	server, stubs := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/dispatch/run", nil)
	req.Header.Set("x-dispatch-secret", "guessed")
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.RunDispatch(ctx))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, stubs.dispatchRunner.calls)
}

func TestRunDispatch_Success(t *testing.T) {
	server, stubs := newTestServer()
	stubs.dispatchRunner.result = commands.RunDispatchCycleResult{Scanned: 5, Assigned: 3}

	req := httptest.NewRequest(http.MethodPost, "/dispatch/run", nil)
	req.Header.Set("x-dispatch-secret", testDispatchSecret)
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.RunDispatch(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stubs.dispatchRunner.calls)
	assert.JSONEq(t, `{"scanned":5,"assigned":3,"radiusKm":10}`, rec.Body.String())
}

func TestRunDispatch_HandlerFailure(t *testing.T) {
	server, stubs := newTestServer()
	stubs.dispatchRunner.err = assert.AnError

	req := httptest.NewRequest(http.MethodPost, "/dispatch/run", nil)
	req.Header.Set("x-dispatch-secret", testDispatchSecret)
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.RunDispatch(ctx))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPaymongoWebhook_EmptyBody(t *testing.T) {
	server, _ := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/paymongo/webhook", nil)
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.PaymongoWebhook(ctx))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymongoWebhook_PassesRawBodyAndSignature(t *testing.T) {
	server, stubs := newTestServer()

	body := `{"data":{"attributes":{"type":"payment.paid"}}}`
	req := httptest.NewRequest(http.MethodPost, "/paymongo/webhook", strings.NewReader(body))
	req.Header.Set("Paymongo-Signature", "t=1,te=abc")
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.PaymongoWebhook(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.Equal(t, body, string(stubs.paymentReconciler.lastBody))
	assert.Equal(t, "t=1,te=abc", stubs.paymentReconciler.lastSig)
}

func TestPaymongoWebhook_RejectedInvalid(t *testing.T) {
	server, stubs := newTestServer()
	stubs.paymentReconciler.outcome = commands.OutcomeRejectedInvalid

	req := httptest.NewRequest(http.MethodPost, "/paymongo/webhook", strings.NewReader(`{}`))
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.PaymongoWebhook(ctx))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymongoWebhook_IgnoredOutcomesAcknowledged(t *testing.T) {
	for _, outcome := range []commands.ReconcileOutcome{
		commands.OutcomeIgnoredDuplicate,
		commands.OutcomeIgnoredUnmatched,
	} {
		server, stubs := newTestServer()
		stubs.paymentReconciler.outcome = outcome

		req := httptest.NewRequest(http.MethodPost, "/paymongo/webhook", strings.NewReader(`{}`))
		ctx, rec := newEchoContext(req)

		require.NoError(t, server.PaymongoWebhook(ctx))

		assert.Equal(t, http.StatusOK, rec.Code, "outcome %s must be acknowledged", outcome)
		assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	}
}

func TestPaymongoWebhook_InfrastructureFailure(t *testing.T) {
	server, stubs := newTestServer()
	stubs.paymentReconciler.err = assert.AnError

	req := httptest.NewRequest(http.MethodPost, "/paymongo/webhook", strings.NewReader(`{}`))
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.PaymongoWebhook(ctx))

	// 500 signals the provider to retry the delivery.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func newIntentRequest(t *testing.T, orderID string) *http.Request {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"orderId": orderID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/payments/intent", strings.NewReader(string(payload)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestCreatePaymentIntent_Success(t *testing.T) {
	server, stubs := newTestServer()
	stubs.intentCreator.result = commands.CreatePaymentIntentResult{
		IntentID:   "pi_1",
		QRImageURL: "https://example.test/qr.png",
	}

	ctx, rec := newEchoContext(newIntentRequest(t, kernel.NewUUID().String()))

	require.NoError(t, server.CreatePaymentIntent(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"intentId":"pi_1","qrUrl":"https://example.test/qr.png"}`, rec.Body.String())
}

func TestCreatePaymentIntent_InvalidOrderID(t *testing.T) {
	server, _ := newTestServer()
	ctx, rec := newEchoContext(newIntentRequest(t, "not-a-uuid"))

	require.NoError(t, server.CreatePaymentIntent(ctx))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePaymentIntent_OrderNotFound(t *testing.T) {
	server, stubs := newTestServer()
	stubs.intentCreator.err = errs.NewObjectNotFoundError("order", kernel.NewUUID().String())

	ctx, rec := newEchoContext(newIntentRequest(t, kernel.NewUUID().String()))

	require.NoError(t, server.CreatePaymentIntent(ctx))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePaymentIntent_PaymentAlreadySettled(t *testing.T) {
	server, stubs := newTestServer()
	stubs.intentCreator.err = order.ErrPaymentIsFinal

	ctx, rec := newEchoContext(newIntentRequest(t, kernel.NewUUID().String()))

	require.NoError(t, server.CreatePaymentIntent(ctx))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreatePaymentIntent_GatewayUnavailable(t *testing.T) {
	server, stubs := newTestServer()
	stubs.intentCreator.err = fmt.Errorf("create provider intent: %w", ports.ErrGatewayUnavailable)

	ctx, rec := newEchoContext(newIntentRequest(t, kernel.NewUUID().String()))

	require.NoError(t, server.CreatePaymentIntent(ctx))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCreatePaymentIntent_StoreFailure(t *testing.T) {
	server, stubs := newTestServer()
	stubs.intentCreator.err = assert.AnError

	ctx, rec := newEchoContext(newIntentRequest(t, kernel.NewUUID().String()))

	require.NoError(t, server.CreatePaymentIntent(ctx))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetPendingOrders_Success(t *testing.T) {
	server, stubs := newTestServer()
	lat, lng := 14.5995, 120.9842
	id := kernel.NewUUID()
	stubs.pendingOrders.result = []queries.GetPendingOrdersQueryResponse{
		{
			ID:             id,
			CustomerID:     "customer-1",
			AmountCentavos: 25000,
			DeliveryLat:    &lat,
			DeliveryLng:    &lng,
			PaymentStatus:  "pending",
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/orders/pending", nil)
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.GetPendingOrders(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, id.String(), response[0]["id"])
	assert.Equal(t, "customer-1", response[0]["customer_id"])
	assert.InDelta(t, 25000, response[0]["amount_centavos"], 0.5)
	assert.InDelta(t, lat, response[0]["delivery_lat"], 1e-9)
	assert.Equal(t, "pending", response[0]["payment_status"])
}

func TestGetPendingOrders_Empty(t *testing.T) {
	server, stubs := newTestServer()
	stubs.pendingOrders.result = []queries.GetPendingOrdersQueryResponse{}

	req := httptest.NewRequest(http.MethodGet, "/orders/pending", nil)
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.GetPendingOrders(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetPendingOrders_Failure(t *testing.T) {
	server, stubs := newTestServer()
	stubs.pendingOrders.err = assert.AnError

	req := httptest.NewRequest(http.MethodGet, "/orders/pending", nil)
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.GetPendingOrders(ctx))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetAvailableCouriers_Success(t *testing.T) {
	server, stubs := newTestServer()
	id := kernel.NewUUID()
	stubs.availableCouriers.result = []queries.GetAvailableCouriersQueryResponse{
		{ID: id, Name: "Ana Reyes", Lat: 14.6042, Lng: 120.9822},
	}

	req := httptest.NewRequest(http.MethodGet, "/couriers/available", nil)
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.GetAvailableCouriers(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, id.String(), response[0]["id"])
	assert.Equal(t, "Ana Reyes", response[0]["name"])
	assert.InDelta(t, 14.6042, response[0]["lat"], 1e-9)
	assert.InDelta(t, 120.9822, response[0]["lng"], 1e-9)
}

func TestGetAvailableCouriers_Failure(t *testing.T) {
	server, stubs := newTestServer()
	stubs.availableCouriers.err = assert.AnError

	req := httptest.NewRequest(http.MethodGet, "/couriers/available", nil)
	ctx, rec := newEchoContext(req)

	require.NoError(t, server.GetAvailableCouriers(ctx))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
