package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRequestIDIssued(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/calendar/template", nil)

	RequestID()(c)

	issued := c.Writer.Header().Get("X-Request-Id")
	require.NotEmpty(t, issued)
	require.Equal(t, issued, c.GetString(ContextRequestIDKey))
}

func TestRequestIDPassthrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/calendar/template", nil)
	c.Request.Header.Set("X-Request-Id", "import-run-42")

	RequestID()(c)

	require.Equal(t, "import-run-42", c.Writer.Header().Get("X-Request-Id"))
	require.Equal(t, "import-run-42", c.GetString(ContextRequestIDKey))
}
