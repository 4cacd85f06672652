package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"beerorder/internal/core/application/usecases/commands"
	"beerorder/internal/core/application/usecases/queries"
	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type OrderCommands interface {
	CreateOrder(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
	CancelOrder(ctx context.Context, cmd commands.CancelOrderCommand) (*order.Order, error)
	MarkPickedUp(ctx context.Context, cmd commands.PickUpOrderCommand) (*order.Order, error)
}

type OrderFinder interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)
}

type OrderLister interface {
	Handle(ctx context.Context, query queries.ListOrdersQuery) ([]queries.OrderSummaryResponse, error)
}

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	orders OrderCommands

	getOrderHandler   OrderFinder
	listOrdersHandler OrderLister

	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	orders OrderCommands,
	getOrderHandler OrderFinder,
	listOrdersHandler OrderLister,
	logger *slog.Logger,
) *Server {
	return &Server{
		orders:            orders,
		getOrderHandler:   getOrderHandler,
		listOrdersHandler: listOrdersHandler,
		logger:            logger.With("component", "http_server"),
	}
}

// CreateOrder handles POST /api/v1/customers/{customerId}/orders.
func (s *Server) CreateOrder(ctx echo.Context, customerId openapi_types.UUID) error {
	var body NewOrder
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	customerID, err := kernel.UUIDFromGoogle(customerId)
	if err != nil {
		return s.fail(ctx, err)
	}

	drafts := make([]commands.OrderLineDraft, 0, len(body.Lines))
	for _, line := range body.Lines {
		drafts = append(drafts, commands.OrderLineDraft{UPC: line.Upc, Quantity: line.Quantity})
	}

	var customerRef string
	if body.CustomerRef != nil {
		customerRef = *body.CustomerRef
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), customerID, customerRef, drafts)
	if err != nil {
		return s.fail(ctx, err)
	}

	created, err := s.orders.CreateOrder(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	ctx.Response().Header().Set(echo.HeaderLocation, "/api/v1/orders/"+created.ID().String())
	return ctx.JSON(http.StatusCreated, orderFromAggregate(created))
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	orderID, err := kernel.UUIDFromGoogle(orderId)
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	found, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	lines := make([]OrderLine, len(found.Lines))
	for i, line := range found.Lines {
		lines[i] = OrderLine{
			Id:                line.ID.Bytes(),
			Upc:               line.UPC,
			QuantityOrdered:   line.QuantityOrdered,
			QuantityAllocated: line.QuantityAllocated,
		}
	}

	return ctx.JSON(http.StatusOK, Order{
		Id:          found.ID.Bytes(),
		CustomerId:  found.CustomerID.Bytes(),
		CustomerRef: optional(found.CustomerRef),
		Status:      found.Status,
		CreatedAt:   &found.CreatedAt,
		UpdatedAt:   &found.UpdatedAt,
		Lines:       lines,
	})
}

// ListOrders handles GET /api/v1/orders.
func (s *Server) ListOrders(ctx echo.Context, params ListOrdersParams) error {
	status := order.Unknown
	if params.Status != nil {
		parsed, err := order.ParseStatus(*params.Status)
		if err != nil {
			return s.fail(ctx, err)
		}
		status = parsed
	}

	limit := queries.DefaultListLimit
	if params.Limit != nil {
		limit = *params.Limit
	}

	query, err := queries.NewListOrdersQuery(status, limit)
	if err != nil {
		return s.fail(ctx, err)
	}

	orders, err := s.listOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]OrderSummary, len(orders))
	for i, o := range orders {
		response[i] = OrderSummary{
			Id:          o.ID.Bytes(),
			CustomerId:  o.CustomerID.Bytes(),
			CustomerRef: optional(o.CustomerRef),
			Status:      o.Status,
			UpdatedAt:   o.UpdatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// PickUpOrder handles PUT /api/v1/orders/{orderId}/pickup. An order that is
// not ALLOCATED is left as it is and its current status is returned.
func (s *Server) PickUpOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	orderID, err := kernel.UUIDFromGoogle(orderId)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewPickUpOrderCommand(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.orders.MarkPickedUp(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, OrderState{Id: result.ID().Bytes(), Status: result.Status().String()})
}

// CancelOrder handles PUT /api/v1/orders/{orderId}/cancel. Orders past the
// point of cancellation are returned unchanged.
func (s *Server) CancelOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	orderID, err := kernel.UUIDFromGoogle(orderId)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCancelOrderCommand(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.orders.CancelOrder(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, OrderState{Id: result.ID().Bytes(), Status: result.Status().String()})
}

func (s *Server) fail(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, Error{Code: http.StatusNotFound, Message: err.Error()})
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	}

	s.logger.ErrorContext(ctx.Request().Context(), "Request failed",
		"method", ctx.Request().Method,
		"path", ctx.Path(),
		"error", err,
	)
	return ctx.JSON(http.StatusInternalServerError, Error{
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
	})
}

func orderFromAggregate(o *order.Order) Order {
	lines := make([]OrderLine, len(o.Lines()))
	for i, line := range o.Lines() {
		lines[i] = OrderLine{
			Id:                line.ID().Bytes(),
			Upc:               line.UPC(),
			QuantityOrdered:   line.QuantityOrdered(),
			QuantityAllocated: line.QuantityAllocated(),
		}
	}

	return Order{
		Id:          o.ID().Bytes(),
		CustomerId:  o.CustomerID().Bytes(),
		CustomerRef: optional(o.CustomerRef()),
		Status:      o.Status().String(),
		Lines:       lines,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
