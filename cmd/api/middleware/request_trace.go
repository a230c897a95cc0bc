package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marlang/cmd/api/trace"
	"marlang/config"
)

const (
	headerRequestID = "X-Request-Id"
	headerSpanID    = "X-Span-Id"

	maxBodyLog = 1024
)

// RequestTrace 는 inbound 요청마다 request_id 를 보장하고 응답 헤더와 요청 로그에 남긴다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx := trace.WithRequest(c.Request.Context(), c.GetHeader(headerRequestID))
		c.Request = c.Request.WithContext(ctx)
		requestID := trace.RequestID(ctx)
		c.Writer.Header().Set(headerRequestID, requestID)
		c.Writer.Header().Set(headerSpanID, trace.CurrentSpan(ctx))

		body := bodySnippet(c.Request)

		c.Next()

		fields := trace.Fields(c.Request.Context(), config.Fields{
			"method":       c.Request.Method,
			"path":         c.Request.URL.Path,
			"route":        c.FullPath(),
			"query_params": map[string][]string(c.Request.URL.Query()),
			"status":       c.Writer.Status(),
			"duration":     time.Since(start).String(),
		})
		if body != "" {
			fields["body"] = body
		}
		config.InfoWithFields("completed request", fields)
	}
}

// bodySnippet 은 쓰기 요청의 바디 앞부분을 읽고, 핸들러가 다시 읽을 수 있게 Body 를 복원한다.
func bodySnippet(req *http.Request) string {
	if req.Body == nil || req.ContentLength == 0 {
		return ""
	}
	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return ""
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return ""
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	if len(data) > maxBodyLog {
		data = data[:maxBodyLog]
	}
	return string(data)
}
