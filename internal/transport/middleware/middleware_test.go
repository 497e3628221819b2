package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/payment-management/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const contract = `
openapi: 3.0.3
info:
  title: test
  version: 1.0.0
paths:
  /items/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: integer
    patch:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              properties:
                count:
                  type: integer
      responses:
        '200':
          description: ok
`

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
})

var _ = Describe("LoggingMiddleware", func() {
	var (
		buf    *bytes.Buffer
		logger *slog.Logger
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		logger = slog.New(slog.NewJSONHandler(buf, nil))
	})

	It("should mask card numbers and payer documents but keep the body intact for the handler", func() {
		body := `{"card_number":"4111111111111111","payer_document":"52998224725","amount":10}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(body))
		req.Header.Set("Authorization", "Bearer abc")
		rec := httptest.NewRecorder()

		middleware.LoggingMiddleware(logger)(ok).ServeHTTP(rec, req)

		Expect(rec.Body.String()).To(Equal(body))
		logged := buf.String()
		Expect(logged).NotTo(ContainSubstring("4111111111111111"))
		Expect(logged).NotTo(ContainSubstring("52998224725"))
		Expect(logged).To(ContainSubstring(`************1111`))
		Expect(logged).NotTo(ContainSubstring("Bearer abc"))
	})

	It("should mask documents carried in the path", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/52998224725/validation", nil)
		middleware.LoggingMiddleware(logger)(ok).ServeHTTP(httptest.NewRecorder(), req)

		Expect(buf.String()).NotTo(ContainSubstring("52998224725"))
		Expect(buf.String()).To(ContainSubstring("/api/v1/documents/*********25/validation"))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("should answer 500 without leaking the panic value", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("secret connection string")
		})
		rec := httptest.NewRecorder()

		middleware.RecoveryMiddleware(logger)(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("secret"))
		Expect(rec.Body.String()).To(ContainSubstring("INTERNAL_ERROR"))
	})
})

var _ = Describe("CORS", func() {
	It("should echo an allowed origin only", func() {
		handler := middleware.CORS("http://a.example, http://b.example")(ok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://b.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://b.example"))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})
})

var _ = Describe("RequestValidator", func() {
	var handler http.Handler

	BeforeEach(func() {
		validator, err := middleware.NewRequestValidator([]byte(contract), slog.New(slog.NewTextHandler(io.Discard, nil)))
		Expect(err).NotTo(HaveOccurred())
		handler = validator.Middleware(ok)
	})

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	It("should pass conforming requests and preserve the body", func() {
		rec := serve(http.MethodPatch, "/items/3", `{"count":2}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(`{"count":2}`))
	})

	It("should reject a path parameter of the wrong type", func() {
		rec := serve(http.MethodPatch, "/items/x", `{"count":2}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("INVALID_REQUEST"))
	})

	It("should reject a body field of the wrong type", func() {
		rec := serve(http.MethodPatch, "/items/3", `{"count":"two"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should ignore routes outside the contract", func() {
		Expect(serve(http.MethodGet, "/other", "").Code).To(Equal(http.StatusOK))
		Expect(serve(http.MethodDelete, "/items/3", "").Code).To(Equal(http.StatusOK))
	})

	It("should fail on a malformed contract", func() {
		_, err := middleware.NewRequestValidator([]byte("openapi: ["), slog.Default())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("RequestID", func() {
	serve := func(traceID string) string {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if traceID != "" {
			req.Header.Set("X-Trace-ID", traceID)
		}
		rec := httptest.NewRecorder()
		middleware.RequestID(ok).ServeHTTP(rec, req)
		return rec.Header().Get("X-Trace-ID")
	}

	It("should keep a well-formed caller id", func() {
		Expect(serve("abc-123")).To(Equal("abc-123"))
	})

	It("should replace missing or malformed ids", func() {
		Expect(serve("")).To(HaveLen(36))
		Expect(serve("bad id\nwith newline")).NotTo(ContainSubstring("bad"))
	})
})
