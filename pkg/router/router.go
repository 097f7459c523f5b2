package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)
type WebsocketHandlerFunc func(ctx context.Context, conn *websocket.Conn) error

// MiddlewareFunc may enrich the context. Returning an error stops the request.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response is written, even on error.
type CloserFunc func(ctx context.Context)

type Router struct {
	rootCtx context.Context
	engine  *gin.Engine

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(ctx context.Context) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{rootCtx: ctx, engine: engine}
}

// Branch returns a router sharing the same routes table but with its own copy
// of middlewares.
func (r *Router) Branch() *Router {
	return &Router{
		rootCtx: r.rootCtx,
		engine:  r.engine,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]MiddlewareFunc{}, r.afters...),
		closers: append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func Websocket(r *Router, pattern string, handler WebsocketHandlerFunc) {
	r.engine.GET(pattern, wrapWebsocket(r, handler))
}

// Handler returns the http handler with the CORS policy of the server.
func (r *Router) Handler(cfg config.ServerConfigs) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowCORS,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r.engine)
}

// newContext carries the service values of the root context into the request
// context.
func (r *Router) newContext(gctx *gin.Context) context.Context {
	ctx := gctx.Request.Context()
	ctx = xcontext.WithConfigs(ctx, xcontext.Configs(r.rootCtx))
	ctx = xcontext.WithLogger(ctx, xcontext.Logger(r.rootCtx))
	ctx = xcontext.WithDB(ctx, xcontext.DB(r.rootCtx))
	ctx = xcontext.WithHTTPRequest(ctx, gctx.Request)
	ctx = xcontext.WithHTTPWriter(ctx, gctx.Writer)
	return ctx
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, m := range middlewares {
		next, err := m(ctx)
		if err != nil {
			return ctx, err
		}

		ctx = next
	}

	return ctx, nil
}

func (r *Router) close(ctx context.Context) {
	for _, c := range r.closers {
		c(ctx)
	}
}
