package auth

import (
	"context"

	"github.com/el-feo/content-processing-sub001/handler"
	"github.com/el-feo/content-processing-sub001/internal/domain"
	"github.com/el-feo/content-processing-sub001/observability"
)

// Middleware authenticates every request before it reaches validation and
// the worker. The raw token is removed from request metadata here, whether
// or not verification succeeds, so nothing downstream can log it.
func Middleware(authenticator Authenticator, provider observability.Provider) handler.Middleware {
	logger := provider.Logger("auth")
	metrics := provider.Metrics("auth")

	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx context.Context, req handler.Request) (handler.Response, error) {
			token, ok := req.GetMetadata(handler.MetaAuthToken)
			req.DeleteMetadata(handler.MetaAuthToken)

			if !ok || token == "" {
				metrics.RecordError("auth", "missing_token")
				logger.Warn(ctx, "request without credentials", observability.Fields{
					"request_id": req.ID,
					"source":     req.Source,
				})
				return handler.NewErrorResponse(req.ID, domain.CodeMissingToken,
					"Unauthorized", "Authentication token is required"), nil
			}

			authCtx, err := authenticator.Authenticate(ctx, token)
			if err != nil {
				code := domain.CodeInvalidToken
				message := "Authentication token is invalid"
				retryable := false
				if domainErr, isDomain := domain.AsDomainError(err); isDomain {
					code = domainErr.Code
					message = domainErr.Message
					retryable = domainErr.Retryable
				}

				logger.Warn(ctx, "authentication failed", observability.Fields{
					"request_id": req.ID,
					"error_code": code,
				})

				resp := handler.NewErrorResponse(req.ID, code, message, "")
				resp.Error.Retryable = retryable
				return resp, nil
			}

			return next(WithAuthContext(ctx, authCtx), req)
		}
	}
}
