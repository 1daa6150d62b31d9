// Package http exposes the service over HTTP using echo. The handlers stay
// thin: decode the request, call a command or query handler, map the result
// to a status code.
package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// signatureHeaderName carries the provider's webhook signature.
const signatureHeaderName = "Paymongo-Signature"

// dispatchSecretHeaderName authenticates manual dispatch triggers.
const dispatchSecretHeaderName = "x-dispatch-secret"

// Handler contracts the server depends on. The concrete command and query
// handlers satisfy these; tests substitute stubs.
type (
	// DispatchRunner executes one dispatch cycle.
	DispatchRunner interface {
		Handle(ctx context.Context, cmd commands.RunDispatchCycleCommand) (commands.RunDispatchCycleResult, error)
	}

	// PaymentReconciler absorbs one provider payment notification.
	PaymentReconciler interface {
		Handle(ctx context.Context, cmd commands.ReconcilePaymentCommand) (commands.ReconcileOutcome, error)
	}

	// PaymentIntentCreator creates a provider payment intent for an order.
	PaymentIntentCreator interface {
		Handle(ctx context.Context, cmd commands.CreatePaymentIntentCommand) (commands.CreatePaymentIntentResult, error)
	}

	// PendingOrdersReader reads the dispatch backlog.
	PendingOrdersReader interface {
		Handle(ctx context.Context, query queries.GetPendingOrdersQuery) ([]queries.GetPendingOrdersQueryResponse, error)
	}

	// AvailableCouriersReader reads the claimable courier pool.
	AvailableCouriersReader interface {
		Handle(ctx context.Context, query queries.GetAvailableCouriersQuery) ([]queries.GetAvailableCouriersQueryResponse, error)
	}
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	dispatchSecret string
	radiusKm       float64

	dispatchRunner    DispatchRunner
	paymentReconciler PaymentReconciler
	intentCreator     PaymentIntentCreator

	pendingOrders     PendingOrdersReader
	availableCouriers AvailableCouriersReader
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	dispatchSecret string,
	radiusKm float64,
	dispatchRunner DispatchRunner,
	paymentReconciler PaymentReconciler,
	intentCreator PaymentIntentCreator,
	pendingOrders PendingOrdersReader,
	availableCouriers AvailableCouriersReader,
) *Server {
	return &Server{
		dispatchSecret:    dispatchSecret,
		radiusKm:          radiusKm,
		dispatchRunner:    dispatchRunner,
		paymentReconciler: paymentReconciler,
		intentCreator:     intentCreator,
		pendingOrders:     pendingOrders,
		availableCouriers: availableCouriers,
	}
}

// RegisterRoutes attaches all endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)
	e.POST("/dispatch/run", s.RunDispatch)
	e.POST("/paymongo/webhook", s.PaymongoWebhook)
	e.POST("/payments/intent", s.CreatePaymentIntent)
	e.GET("/orders/pending", s.GetPendingOrders)
	e.GET("/couriers/available", s.GetAvailableCouriers)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type dispatchRunResponse struct {
	Scanned  int     `json:"scanned"`
	Assigned int     `json:"assigned"`
	RadiusKm float64 `json:"radiusKm"`
}

// RunDispatch handles POST /dispatch/run - triggers one dispatch cycle.
// The trigger is authenticated by a shared secret header compared in
// constant time.
func (s *Server) RunDispatch(ctx echo.Context) error {
	provided := ctx.Request().Header.Get(dispatchSecretHeaderName)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.dispatchSecret)) != 1 {
		return ctx.JSON(http.StatusUnauthorized, errorResponse{
			Code:    http.StatusUnauthorized,
			Message: "Invalid dispatch secret",
		})
	}

	cmd, err := commands.NewRunDispatchCycleCommand(s.radiusKm)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Invalid dispatch configuration",
		})
	}

	result, err := s.dispatchRunner.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Dispatch cycle failed",
		})
	}

	return ctx.JSON(http.StatusOK, dispatchRunResponse{
		Scanned:  result.Scanned,
		Assigned: result.Assigned,
		RadiusKm: s.radiusKm,
	})
}

type webhookResponse struct {
	Received bool `json:"received"`
}

// PaymongoWebhook handles POST /paymongo/webhook - absorbs provider payment
// notifications. The body is read raw: the signature covers the exact bytes
// on the wire, so no binding middleware may touch them first.
//
// Unmatched and duplicate events are acknowledged with 200 so the provider
// stops retrying; only infrastructure failures return 500, which the
// provider retries later.
func (s *Server) PaymongoWebhook(ctx echo.Context) error {
	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil || len(rawBody) == 0 {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid webhook body",
		})
	}

	cmd, err := commands.NewReconcilePaymentCommand(rawBody, ctx.Request().Header.Get(signatureHeaderName))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid webhook body",
		})
	}

	outcome, err := s.paymentReconciler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to process webhook",
		})
	}

	if outcome == commands.OutcomeRejectedInvalid {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid webhook signature or payload",
		})
	}

	return ctx.JSON(http.StatusOK, webhookResponse{Received: true})
}

type createIntentRequest struct {
	OrderID string `json:"orderId"`
}

type createIntentResponse struct {
	IntentID string `json:"intentId"`
	QRURL    string `json:"qrUrl"`
}

// CreatePaymentIntent handles POST /payments/intent - creates a provider
// payment intent with a QR payment method for an order.
func (s *Server) CreatePaymentIntent(ctx echo.Context) error {
	var req createIntentRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	cmd, err := commands.NewCreatePaymentIntentCommand(orderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	result, err := s.intentCreator.Handle(ctx.Request().Context(), cmd)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, errorResponse{
			Code:    http.StatusNotFound,
			Message: "Order not found",
		})
	case errors.Is(err, order.ErrPaymentIsFinal):
		return ctx.JSON(http.StatusConflict, errorResponse{
			Code:    http.StatusConflict,
			Message: "Order payment already settled",
		})
	case errors.Is(err, ports.ErrGatewayUnavailable):
		return ctx.JSON(http.StatusBadGateway, errorResponse{
			Code:    http.StatusBadGateway,
			Message: "Payment provider unavailable",
		})
	case err != nil:
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create payment intent",
		})
	}

	return ctx.JSON(http.StatusOK, createIntentResponse{
		IntentID: result.IntentID,
		QRURL:    result.QRImageURL,
	})
}

type pendingOrderResponse struct {
	ID             string   `json:"id"`
	CustomerID     string   `json:"customer_id"`
	AmountCentavos int64    `json:"amount_centavos"`
	DeliveryLat    *float64 `json:"delivery_lat"`
	DeliveryLng    *float64 `json:"delivery_lng"`
	PaymentStatus  string   `json:"payment_status"`
}

// GetPendingOrders handles GET /orders/pending - retrieves the dispatch backlog.
func (s *Server) GetPendingOrders(ctx echo.Context) error {
	query := queries.NewGetPendingOrdersQuery()

	orders, err := s.pendingOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve pending orders",
		})
	}

	response := make([]pendingOrderResponse, len(orders))
	for i, o := range orders {
		response[i] = pendingOrderResponse{
			ID:             o.ID.String(),
			CustomerID:     o.CustomerID,
			AmountCentavos: o.AmountCentavos,
			DeliveryLat:    o.DeliveryLat,
			DeliveryLng:    o.DeliveryLng,
			PaymentStatus:  o.PaymentStatus,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

type availableCourierResponse struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// GetAvailableCouriers handles GET /couriers/available - retrieves the
// claimable courier pool.
func (s *Server) GetAvailableCouriers(ctx echo.Context) error {
	query := queries.NewGetAvailableCouriersQuery()

	couriers, err := s.availableCouriers.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve available couriers",
		})
	}

	response := make([]availableCourierResponse, len(couriers))
	for i, c := range couriers {
		response[i] = availableCourierResponse{
			ID:   c.ID.String(),
			Name: c.Name,
			Lat:  c.Lat,
			Lng:  c.Lng,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}
