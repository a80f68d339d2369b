package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/ctxutil"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

func TestAttachRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := uuid.New()

	cases := []struct {
		name   string
		header string
		want   uuid.UUID
	}{
		{"valid", user.String(), user},
		{"missing", "", uuid.Nil},
		{"malformed", "not-a-uuid", uuid.Nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got uuid.UUID
			r := gin.New()
			r.Use(AttachRequestContext())
			r.GET("/x", func(c *gin.Context) {
				got = ctxutil.UserID(c.Request.Context())
				c.Status(http.StatusNoContent)
			})
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("X-User-Id", tc.header)
			}
			r.ServeHTTP(httptest.NewRecorder(), req)
			if got != tc.want {
				t.Fatalf("user id: got %s want %s", got, tc.want)
			}
		})
	}
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var td *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(logger.Nop()))
	r.GET("/x", func(c *gin.Context) {
		td = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-1")
	req.Header.Set("X-Trace-Id", "trace-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if td == nil || td.RequestID != "req-1" || td.TraceID != "trace-1" {
		t.Fatalf("trace data: %+v", td)
	}
	if rec.Header().Get("X-Request-Id") != "req-1" || rec.Header().Get("X-Trace-Id") != "trace-1" {
		t.Fatalf("headers not echoed: %v", rec.Header())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Header().Get("X-Request-Id") == "" || rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("ids not generated")
	}
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics(prometheus.NewRegistry())
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/topics", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/topics", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	n, err := testutil.GatherAndCount(m.Registry(), "learnup_api_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 request series, got %d", n)
	}

	// nil metrics must be a pass-through
	r = gin.New()
	r.Use(Metrics(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestRequestFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := uuid.New()
	var fields []any
	r := gin.New()
	r.Use(AttachTraceContext(), AttachRequestContext(), RequestLogger(nil))
	r.GET("/api/roadmaps/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
		fields = requestFields(c, routeOf(c), c.Writer.Status(), 0)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/roadmaps/abc", nil)
	req.Header.Set("X-Request-Id", "req-9")
	req.Header.Set("X-User-Id", user.String())
	r.ServeHTTP(httptest.NewRecorder(), req)

	got := map[string]any{}
	for i := 0; i+1 < len(fields); i += 2 {
		got[fields[i].(string)] = fields[i+1]
	}
	if got["route"] != "/api/roadmaps/:id" || got["status"] != http.StatusNotFound {
		t.Fatalf("fields: %v", got)
	}
	if got["request_id"] != "req-9" || got["user_id"] != user.String() {
		t.Fatalf("identity fields: %v", got)
	}
}
