package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface is the set of operations declared in openapi.yaml.
type ServerInterface interface {
	CreateOrder(ctx echo.Context, customerId openapi_types.UUID) error
	ListOrders(ctx echo.Context, params ListOrdersParams) error
	GetOrder(ctx echo.Context, orderId openapi_types.UUID) error
	PickUpOrder(ctx echo.Context, orderId openapi_types.UUID) error
	CancelOrder(ctx echo.Context, orderId openapi_types.UUID) error
}

// ServerInterfaceWrapper binds path and query parameters before calling the
// handler.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	var customerId openapi_types.UUID
	if err := bindPathUUID(ctx, "customerId", &customerId); err != nil {
		return err
	}
	return w.Handler.CreateOrder(ctx, customerId)
}

func (w *ServerInterfaceWrapper) ListOrders(ctx echo.Context) error {
	var params ListOrdersParams

	if err := runtime.BindQueryParameter("form", true, false, "status", ctx.QueryParams(), &params.Status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter status: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}

	return w.Handler.ListOrders(ctx, params)
}

func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	var orderId openapi_types.UUID
	if err := bindPathUUID(ctx, "orderId", &orderId); err != nil {
		return err
	}
	return w.Handler.GetOrder(ctx, orderId)
}

func (w *ServerInterfaceWrapper) PickUpOrder(ctx echo.Context) error {
	var orderId openapi_types.UUID
	if err := bindPathUUID(ctx, "orderId", &orderId); err != nil {
		return err
	}
	return w.Handler.PickUpOrder(ctx, orderId)
}

func (w *ServerInterfaceWrapper) CancelOrder(ctx echo.Context) error {
	var orderId openapi_types.UUID
	if err := bindPathUUID(ctx, "orderId", &orderId); err != nil {
		return err
	}
	return w.Handler.CancelOrder(ctx, orderId)
}

func bindPathUUID(ctx echo.Context, name string, dest *openapi_types.UUID) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return nil
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds every operation to a router mounted at /api/v1.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.POST("/customers/:customerId/orders", wrapper.CreateOrder)
	router.GET("/orders", wrapper.ListOrders)
	router.GET("/orders/:orderId", wrapper.GetOrder)
	router.PUT("/orders/:orderId/pickup", wrapper.PickUpOrder)
	router.PUT("/orders/:orderId/cancel", wrapper.CancelOrder)
}
