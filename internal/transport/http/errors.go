package http

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/platform/httpx"
	"github.com/light-bringer/offercat-service/internal/platform/observability"
)

var kindStatus = map[domain.Kind]int{
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindUnauthenticated:   http.StatusUnauthorized,
	domain.KindForbidden:         http.StatusForbidden,
	domain.KindInsufficientStock: http.StatusConflict,
	domain.KindValidation:        http.StatusBadRequest,
	domain.KindConflict:          http.StatusConflict,
}

// messages overrides the sentinel text for specific operations.
type messages map[error]string

// errBadRequest marks payloads that failed to decode.
var errBadRequest = errors.New("malformed request")

func badRequest(message string) httpx.Error {
	return httpx.NewError(string(domain.KindValidation), message, http.StatusBadRequest)
}

// toHTTPError converts domain errors to the JSON error envelope. Internal
// errors are logged and their text withheld.
func toHTTPError(ctx context.Context, err error, overrides messages) httpx.Error {
	kind, sentinel := domain.Classify(err)
	status, ok := kindStatus[kind]
	if !ok {
		observability.FromContext(ctx).Error("request failed", zap.Error(err))
		return httpx.NewError(string(domain.KindInternal), "internal server error", http.StatusInternalServerError)
	}

	message := sentinel.Error()
	if override, ok := overrides[sentinel]; ok {
		message = override
	}
	return httpx.NewError(string(kind), message, status)
}

func writeDomainError(ctx context.Context, w http.ResponseWriter, err error, overrides messages) {
	httpx.WriteError(ctx, w, toHTTPError(ctx, err, overrides))
}
