package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/el-feo/content-processing-sub001/handler"
	"github.com/el-feo/content-processing-sub001/internal/domain"
	"github.com/el-feo/content-processing-sub001/observability/mocks"
)

type stubAuthenticator struct {
	authCtx  *AuthContext
	err      error
	gotToken string
	calls    int
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*AuthContext, error) {
	s.calls++
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.authCtx, nil
}

func requestWithToken(token string) handler.Request {
	req := handler.Request{
		ID:        "req-1",
		Source:    "http",
		Type:      "convert",
		Metadata:  map[string]string{},
		Timestamp: time.Now().UTC(),
	}
	if token != "" {
		req.Metadata[handler.MetaAuthToken] = token
	}
	return req
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token reaches the worker", func(t *testing.T) {
		authenticator := &stubAuthenticator{authCtx: &AuthContext{Subject: "caller-1"}}
		mw := Middleware(authenticator, mocks.NoopProvider{})

		var seenCtx context.Context
		var seenReq handler.Request
		next := func(ctx context.Context, req handler.Request) (handler.Response, error) {
			seenCtx = ctx
			seenReq = req
			return handler.Response{ID: req.ID, Success: true}, nil
		}

		resp, err := mw(next)(ctx, requestWithToken("valid-token"))
		require.NoError(t, err)
		assert.True(t, resp.Success)

		assert.Equal(t, "valid-token", authenticator.gotToken)

		authCtx, ok := FromContext(seenCtx)
		require.True(t, ok)
		assert.Equal(t, "caller-1", authCtx.Subject)

		// The raw token must be gone before the next middleware sees it
		_, stillThere := seenReq.GetMetadata(handler.MetaAuthToken)
		assert.False(t, stillThere)
	})

	t.Run("missing token short-circuits", func(t *testing.T) {
		authenticator := &stubAuthenticator{}
		mw := Middleware(authenticator, mocks.NoopProvider{})

		next := func(ctx context.Context, req handler.Request) (handler.Response, error) {
			t.Fatal("worker must not run without credentials")
			return handler.Response{}, nil
		}

		resp, err := mw(next)(ctx, requestWithToken(""))
		require.NoError(t, err)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, domain.CodeMissingToken, resp.Error.Code)
		assert.Equal(t, "Unauthorized", resp.Error.Message)
		assert.Equal(t, 0, authenticator.calls)
	})

	t.Run("expired token maps code", func(t *testing.T) {
		authenticator := &stubAuthenticator{
			err: domain.NewError(domain.CodeExpiredToken, "Authentication token has expired", nil),
		}
		mw := Middleware(authenticator, mocks.NoopProvider{})

		next := func(ctx context.Context, req handler.Request) (handler.Response, error) {
			t.Fatal("worker must not run with a rejected token")
			return handler.Response{}, nil
		}

		resp, err := mw(next)(ctx, requestWithToken("stale"))
		require.NoError(t, err)
		require.NotNil(t, resp.Error)
		assert.Equal(t, domain.CodeExpiredToken, resp.Error.Code)
		assert.False(t, resp.Error.Retryable)
	})

	t.Run("secret outage is retryable", func(t *testing.T) {
		authenticator := &stubAuthenticator{
			err: domain.NewError(domain.CodeAuthUnavailable, "Authentication is temporarily unavailable", nil),
		}
		mw := Middleware(authenticator, mocks.NoopProvider{})

		next := func(ctx context.Context, req handler.Request) (handler.Response, error) {
			return handler.Response{}, nil
		}

		resp, err := mw(next)(ctx, requestWithToken("anything"))
		require.NoError(t, err)
		require.NotNil(t, resp.Error)
		assert.Equal(t, domain.CodeAuthUnavailable, resp.Error.Code)
		assert.True(t, resp.Error.Retryable)
	})

	t.Run("non-domain error maps to invalid token", func(t *testing.T) {
		authenticator := &stubAuthenticator{err: assert.AnError}
		mw := Middleware(authenticator, mocks.NoopProvider{})

		next := func(ctx context.Context, req handler.Request) (handler.Response, error) {
			return handler.Response{}, nil
		}

		resp, err := mw(next)(ctx, requestWithToken("odd"))
		require.NoError(t, err)
		require.NotNil(t, resp.Error)
		assert.Equal(t, domain.CodeInvalidToken, resp.Error.Code)
	})
}
