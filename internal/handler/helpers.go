package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/postloop/postloop/internal/middleware"
	"github.com/postloop/postloop/internal/pkg/errcode"
	appErr "github.com/postloop/postloop/internal/pkg/errors"
	"github.com/postloop/postloop/internal/pkg/response"
	"github.com/postloop/postloop/internal/service"
)

func getTenantID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextTenantIDKey)
	tenantID, _ := value.(string)
	return tenantID
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("tenant_id", getTenantID(c)),
		zap.Error(err),
	)
	var schemaErr *service.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		response.ErrorData(c, errcode.ErrSchema, "invalid header", schemaErr.Header)
	case appErr.IsPrecondition(err):
		response.Error(c, errcode.ErrPrecondition, err.Error())
	case appErr.IsNoData(err):
		response.Error(c, errcode.ErrNoData, "no entries matched the filter")
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case appErr.IsNotFound(err):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
