package router

import (
	"context"
	"crypto/subtle"
	"fmt"
	"math"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/hertz-contrib/keyauth"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/ratelimit"
)

const (
	// HeaderRequestID 请求ID头，客户端未提供时生成
	HeaderRequestID = "X-Request-ID"
	// HeaderAPIKey API Key 头
	HeaderAPIKey = "X-API-Key"

	requestIDKey = "request_id"
)

// RequestID 为每个请求分配ID，写入响应头并放入日志上下文
func RequestID() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		id := string(ctx.Request.Header.Peek(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(requestIDKey, id)
		ctx.Response.Header.Set(HeaderRequestID, id)

		l := logger.Logger.With().Str(requestIDKey, id).Logger()
		ctx.Next(l.WithContext(c))
	}
}

// AccessLog 请求日志
func AccessLog() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		hlog.CtxInfof(c, "%s %s status=%d cost=%s request_id=%s",
			ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start), ctx.GetString(requestIDKey))
	}
}

// APIKeyAuth 校验 X-API-Key
func APIKeyAuth(apiKey string) app.HandlerFunc {
	expected := []byte(apiKey)
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+HeaderAPIKey, ""),
		keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), expected) == 1, nil
		}),
		keyauth.WithErrorHandler(func(c context.Context, ctx *app.RequestContext, err error) {
			ctx.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "API Key 无效或缺失"})
		}),
	)
}

// RateLimit 令牌耗尽时返回 429 和 Retry-After
func RateLimit(tb *ratelimit.TokenBucket) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if tb.Allow() {
			ctx.Next(c)
			return
		}
		wait := int(math.Ceil(tb.RetryAfter().Seconds()))
		if wait < 1 {
			wait = 1
		}
		ctx.Response.Header.Set("Retry-After", fmt.Sprint(wait))
		ctx.AbortWithStatusJSON(consts.StatusTooManyRequests, utils.H{"error": "请求过于频繁，请稍后重试"})
	}
}
