package config

import (
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

const logTimeFormat = "2006-01-02T15:04:05"

// AppLogger 는 애플리케이션 전역에서 사용하는 최소 로거 인터페이스다.
type AppLogger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields 는 구조화 로그를 위한 공통 필드 타입이다.
type Fields map[string]any

// Logger 는 전역 로거다. InitLogger 전에는 info 레벨 JSON 로거로 동작한다.
var Logger AppLogger = NewLogger("info", "json")

// InitLogger 는 설정으로 전역 로거를 다시 만든다. LOG_LEVEL 환경변수가 설정보다 우선한다.
func InitLogger(cfg LoggingConfig) {
	level := firstNonEmpty(os.Getenv("LOG_LEVEL"), cfg.Level, "info")
	Logger = NewLogger(level, cfg.Format)
}

// NewLogger 는 gookit/slog 콘솔 로거를 만든다. format 이 "text" 면 사람이 읽는
// 한 줄 형식, 그 외에는 JSON 이다.
func NewLogger(level, format string) AppLogger {
	h := handler.NewConsoleHandler(levelsUpTo(slog.LevelByName(strings.ToLower(level))))
	if strings.EqualFold(format, "text") {
		h.SetFormatter(slog.NewTextFormatter())
	} else {
		h.SetFormatter(slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
			f.Fields = []string{
				slog.FieldKeyDatetime,
				slog.FieldKeyLevel,
				slog.FieldKeyMessage,
			}
			f.Aliases = slog.StringMap{
				slog.FieldKeyDatetime: "datetime",
				slog.FieldKeyLevel:    "level",
				slog.FieldKeyMessage:  "message",
			}
			f.TimeFormat = logTimeFormat
		}))
	}
	return slog.NewWithHandlers(h)
}

// levelsUpTo 는 max 보다 심각도가 같거나 높은 레벨 목록이다.
func levelsUpTo(max slog.Level) slog.Levels {
	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= max {
			levels = append(levels, lv)
		}
	}
	return levels
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// withServiceName 은 service_name 이 없으면 SERVICE_NAME 환경변수 값으로 채운다.
func withServiceName(fields Fields) Fields {
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	if _, ok := out["service_name"]; !ok {
		if sn := os.Getenv("SERVICE_NAME"); sn != "" {
			out["service_name"] = sn
		}
	}
	return out
}

func logWithFields(level slog.Level, msg string, fields Fields) {
	lg, ok := Logger.(*slog.Logger)
	if !ok {
		switch level {
		case slog.ErrorLevel:
			Logger.Error(msg)
		case slog.WarnLevel:
			Logger.Warn(msg)
		default:
			Logger.Info(msg)
		}
		return
	}

	r := lg.WithFields(slog.M(withServiceName(fields)))
	switch level {
	case slog.ErrorLevel:
		r.Error(msg)
	case slog.WarnLevel:
		r.Warn(msg)
	default:
		r.Info(msg)
	}
}

// InfoWithFields 는 request_id, post_id 같은 필드를 붙인 JSON 로그를 남긴다.
func InfoWithFields(msg string, fields Fields) { logWithFields(slog.InfoLevel, msg, fields) }

func WarnWithFields(msg string, fields Fields) { logWithFields(slog.WarnLevel, msg, fields) }

func ErrorWithFields(msg string, fields Fields) { logWithFields(slog.ErrorLevel, msg, fields) }
