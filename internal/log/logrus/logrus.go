// Package logrus 用 logrus 实现 log.Logger
package logrus

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Zacy-Sokach/DayFlow/internal/log"
)

type logger struct {
	*logrus.Entry
}

// NewLogrus 返回基于 logrus entry 的 log.Logger
func NewLogrus(l *logrus.Entry) log.Logger {
	return logger{Entry: l}
}

func (l logger) WithValues(kv log.Kv) log.Logger {
	newLogger := l.Entry.WithFields(kv)
	return NewLogrus(newLogger)
}

func (l logger) WithCtxValues(ctx context.Context) log.Logger {
	return l.WithValues(log.ValuesFromCtx(ctx))
}
