package quota

import (
	"context"
	"sync"
	"time"

	"marlang/config"
)

// Limiter 는 이미지 생성 호출의 분당 간격과 UTC 일일 한도를 관리한다.
// 프로세스 메모리에만 상태를 두므로 재시작하면 카운터가 초기화된다.
type Limiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time

	now func() time.Time
}

// NewLimiter 는 QuotaConfig 로 Limiter 를 만든다. 0 이하 값은 해당 방향 제한 없음.
func NewLimiter(q config.QuotaConfig) *Limiter {
	perDay := q.RequestsPerDay
	if perDay < 0 {
		perDay = 0
	}

	var interval time.Duration
	if q.RequestsPerMinute > 0 {
		interval = time.Minute / time.Duration(q.RequestsPerMinute)
	}

	return &Limiter{
		dailyLimit: perDay,
		interval:   interval,
		now:        time.Now,
	}
}

// WithClock 는 테스트용 시계를 주입한다.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// WaitAndReserve 는 호출 한 번을 예약한다.
// - 일일 한도 소진: (false, nil). 호출자는 레이트 리밋으로 취급한다.
// - 컨텍스트 취소: (false, ctx.Err()).
func (l *Limiter) WaitAndReserve(ctx context.Context) (bool, error) {
	for {
		l.mu.Lock()

		now := l.now().UTC()
		if key := now.Format("2006-01-02"); l.dayKey != key {
			l.dayKey = key
			l.usedToday = 0
		}

		if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
			l.mu.Unlock()
			return false, nil
		}

		var delay time.Duration
		if l.interval > 0 && !l.lastCall.IsZero() {
			delay = l.lastCall.Add(l.interval).Sub(now)
		}

		if delay <= 0 {
			l.usedToday++
			l.lastCall = now
			l.mu.Unlock()
			return true, nil
		}

		l.mu.Unlock()
		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return false, ctx.Err()
		}
	}
}

// Remaining 은 오늘 남은 호출 수다. 일일 한도가 없으면 -1.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dailyLimit <= 0 {
		return -1
	}
	if l.dayKey != l.now().UTC().Format("2006-01-02") {
		return l.dailyLimit
	}
	return l.dailyLimit - l.usedToday
}
