// Package log 定义应用内统一的日志接口，具体实现由 log/logrus 提供。
package log

import "context"

// Kv 是附加到日志上的键值对
type Kv = map[string]any

// Logger 是各组件依赖的日志接口
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
	WithValues(values Kv) Logger
	WithCtxValues(ctx context.Context) Logger
}

// Noop 不输出任何内容，作为各组件配置中的默认值
var Noop Logger = noop{}

type noop struct{}

func (noop) Debugf(string, ...any)                  {}
func (noop) Infof(string, ...any)                   {}
func (noop) Warningf(string, ...any)                {}
func (noop) Errorf(string, ...any)                  {}
func (n noop) WithValues(Kv) Logger                 { return n }
func (n noop) WithCtxValues(context.Context) Logger { return n }

type ctxKey struct{}

// CtxWithValues 把键值对放进 context，之后通过 WithCtxValues 取出
func CtxWithValues(parent context.Context, values Kv) context.Context {
	merged := Kv{}
	for k, v := range ValuesFromCtx(parent) {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	return context.WithValue(parent, ctxKey{}, merged)
}

// ValuesFromCtx 返回 context 中的键值对
func ValuesFromCtx(ctx context.Context) Kv {
	if ctx == nil {
		return Kv{}
	}
	v, ok := ctx.Value(ctxKey{}).(Kv)
	if !ok {
		return Kv{}
	}
	return v
}
