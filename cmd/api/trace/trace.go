// Package trace 는 요청 하나(HTTP 요청 또는 스케줄 실행 1회)에 붙는 request_id 와
// span 시퀀스를 context 로 전달한다.
package trace

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	"marlang/config"
)

type ctxKey struct{}

type spanState struct {
	requestID string
	seq       atomic.Int64
}

// NewID 는 request_id 로 쓸 랜덤 ID 를 만든다.
func NewID() string {
	return uuid.NewString()
}

// WithRequest 는 span 시퀀스를 0 으로 둔 새 context 를 돌려준다.
func WithRequest(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = NewID()
	}
	return context.WithValue(ctx, ctxKey{}, &spanState{requestID: requestID})
}

func stateFrom(ctx context.Context) *spanState {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(ctxKey{}).(*spanState)
	return s
}

func RequestID(ctx context.Context) string {
	if s := stateFrom(ctx); s != nil {
		return s.requestID
	}
	return ""
}

// CurrentSpan 은 현재 span 번호를 증가시키지 않고 돌려준다.
func CurrentSpan(ctx context.Context) string {
	s := stateFrom(ctx)
	if s == nil {
		return "0"
	}
	return strconv.FormatInt(s.seq.Load(), 10)
}

// NextSpan 은 span 번호를 1 올리고 (requestID, spanID) 를 돌려준다.
// context 에 trace 정보가 없으면 새 request_id 와 span 1 을 쓴다.
func NextSpan(ctx context.Context) (string, string) {
	s := stateFrom(ctx)
	if s == nil {
		return NewID(), "1"
	}
	return s.requestID, strconv.FormatInt(s.seq.Add(1), 10)
}

// Fields 는 구조화 로그에 붙일 request_id/span_id 를 돌려준다. extra 는 덮어쓰지 않고 합친다.
func Fields(ctx context.Context, extra config.Fields) config.Fields {
	out := config.Fields{
		"request_id": RequestID(ctx),
		"span_id":    CurrentSpan(ctx),
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
