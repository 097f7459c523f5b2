package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name  string `json:"name" form:"name"`
	Index int    `json:"index" form:"index"`
}

type echoResponse struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	User  string `json:"user,omitempty"`
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "fail" {
		return nil, errorx.New(errorx.NotFound, "Name %s not found", req.Name)
	}

	return &echoResponse{Name: req.Name, Index: req.Index, User: xcontext.RequestUserID(ctx)}, nil
}

func do(t *testing.T, h http.Handler, method, target, body string) (int, response) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestRouter(t *testing.T) {
	r := New(context.Background())

	var closed []string
	r.AddCloser(func(ctx context.Context) {
		closed = append(closed, xcontext.HTTPRequest(ctx).URL.Path)
	})

	GET(r, "/echo", echo)
	POST(r, "/echo", echo)

	authRouter := r.Branch()
	authRouter.Before(func(ctx context.Context) (context.Context, error) {
		if xcontext.HTTPRequest(ctx).Header.Get("Authorization") == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Need authentication")
		}
		return xcontext.WithRequestUserID(ctx, "operator"), nil
	})
	POST(authRouter, "/auth/echo", echo)

	h := r.Handler(config.ServerConfigs{AllowCORS: []string{"*"}})

	t.Run("get binds the query", func(t *testing.T) {
		code, resp := do(t, h, http.MethodGet, "/echo?name=alice&index=3", "")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, int64(0), resp.Code)
		require.Equal(t, map[string]any{"name": "alice", "index": float64(3)}, resp.Data)
	})

	t.Run("post binds the body", func(t *testing.T) {
		code, resp := do(t, h, http.MethodPost, "/echo", `{"name":"bob","index":1}`)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, map[string]any{"name": "bob", "index": float64(1)}, resp.Data)
	})

	t.Run("invalid body", func(t *testing.T) {
		code, resp := do(t, h, http.MethodPost, "/echo", `{"name":`)
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, int64(errorx.BadRequest), resp.Code)
	})

	t.Run("handler error", func(t *testing.T) {
		code, resp := do(t, h, http.MethodGet, "/echo?name=fail", "")
		require.Equal(t, http.StatusNotFound, code)
		require.Equal(t, int64(errorx.NotFound), resp.Code)
		require.Equal(t, "Name fail not found", resp.Error)
	})

	t.Run("middleware rejects", func(t *testing.T) {
		code, resp := do(t, h, http.MethodPost, "/auth/echo", `{"name":"carol"}`)
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, int64(errorx.Unauthenticated), resp.Code)
	})

	t.Run("middleware enriches the context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/echo", strings.NewReader(`{"name":"carol"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer x")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"user":"operator"`)
	})

	require.Contains(t, closed, "/echo")
	require.Contains(t, closed, "/auth/echo")
}

func TestStatusCode(t *testing.T) {
	require.Equal(t, http.StatusForbidden, statusCode(errorx.New(errorx.NotOperator, "x")))
	require.Equal(t, http.StatusServiceUnavailable, statusCode(errorx.New(errorx.Unavailable, "x")))
	require.Equal(t, http.StatusBadRequest, statusCode(errorx.New(errorx.RaffleNotOpen, "x")))
	require.Equal(t, http.StatusInternalServerError, statusCode(context.Canceled))
}
