package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ctx := router.newContext(gctx)

		ctx, err := func() (context.Context, error) {
			ctx, err := runMiddlewares(ctx, router.befores)
			if err != nil {
				return ctx, err
			}

			var req Request
			if err := bind(gctx, method, &req); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind request: %v", err)
				return ctx, errorx.New(errorx.BadRequest, "Invalid request format")
			}

			resp, err := handler(ctx, &req)
			if err != nil {
				return ctx, err
			}

			ctx = xcontext.WithResponse(ctx, resp)
			return runMiddlewares(ctx, router.afters)
		}()

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			gctx.JSON(statusCode(err), newErrorResponse(err))
		} else {
			gctx.JSON(http.StatusOK, newResponse(xcontext.Response(ctx)))
		}

		router.close(ctx)
	}
}

func bind(gctx *gin.Context, method string, req any) error {
	switch method {
	case http.MethodGet:
		return gctx.ShouldBindQuery(req)
	case http.MethodPost:
		if gctx.Request.ContentLength == 0 {
			return nil
		}
		return gctx.ShouldBindJSON(req)
	default:
		return errorx.New(errorx.BadRequest, "Unsupported method %s", method)
	}
}

func wrapWebsocket(router *Router, handler WebsocketHandlerFunc) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ctx := router.newContext(gctx)

		ctx, err := runMiddlewares(ctx, router.befores)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			gctx.JSON(statusCode(err), newErrorResponse(err))
			router.close(ctx)
			return
		}

		conn, err := upgrader.Upgrade(gctx.Writer, gctx.Request, nil)
		if err != nil {
			// Upgrade already replied to the client.
			xcontext.Logger(ctx).Debugf("Cannot upgrade to websocket: %v", err)
			router.close(xcontext.WithError(ctx, err))
			return
		}
		defer conn.Close()

		if err := handler(ctx, conn); err != nil {
			xcontext.Logger(ctx).Warnf("Websocket handler stopped: %v", err)
			ctx = xcontext.WithError(ctx, err)
		}

		router.close(ctx)
	}
}
