package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marlang/agent"
	"marlang/app"
	"marlang/cmd/api/trace"
	"marlang/config"
)

// runTimeout 은 한 번의 생성(텍스트 + 이미지 여러 장)에 허용하는 최대 시간이다.
const runTimeout = 10 * time.Minute

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		config.Logger.Errorf("failed to initialize app: %v", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	// 첫 실행은 즉시 1회 수행 (시간/쿨다운 게이트가 중복 실행을 막는다)
	runOnce(ctx, a.Runner)

	// UTC 기준 매 정시마다 수행
	for {
		next := nextHour(time.Now().UTC())
		config.Logger.Infof("scheduler sleeping until %s", next.Format(time.RFC3339))
		select {
		case <-ctx.Done():
			config.Logger.Info("scheduler stopped")
			return
		case <-time.After(time.Until(next)):
		}
		runOnce(ctx, a.Runner)
	}
}

func runOnce(ctx context.Context, r *agent.Runner) {
	runCtx, cancel := context.WithTimeout(trace.WithRequest(ctx, ""), runTimeout)
	defer cancel()

	res, err := r.Run(runCtx, agent.TriggerScheduled)
	fields := trace.Fields(runCtx, config.Fields{
		"success": res.Success,
		"skipped": res.Skipped,
		"reason":  res.Reason,
		"post_id": res.PostID,
	})
	if err != nil {
		fields["error"] = err.Error()
		config.ErrorWithFields("scheduled run error", fields)
		return
	}
	config.InfoWithFields("scheduled run finished", fields)
}

// nextHour 는 now 보다 뒤의 첫 정시를 돌려준다.
func nextHour(now time.Time) time.Time {
	return now.Truncate(time.Hour).Add(time.Hour)
}
