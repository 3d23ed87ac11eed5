package httpapi

import (
	"net/http"

	"github.com/riskibarqy/swiss-league/internal/platform/logging"
)

type RouterConfig struct {
	CORSAllowedOrigins []string
	// ServiceToken guards every /v1 route when set.
	ServiceToken string
	// SubmitLimiter throttles the submission routes; nil disables throttling.
	SubmitLimiter *ClientRateLimiter
}

func NewRouter(handler *Handler, cfg RouterConfig, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerQueryRoutes(mux, handler, cfg.ServiceToken)
	registerSubmissionRoutes(mux, handler, cfg.ServiceToken, cfg.SubmitLimiter)
	registerInternalRoutes(mux, handler, cfg.ServiceToken)

	return RequestID(RequestTracing(RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
