package utils

import (
	"context"

	"github.com/begoneskadedjur/kundportal-sub005/appctx"
)

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyWebhookId     = appctx.ContextKeyWebhookId
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetWebhookIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyWebhookId)
}

func SetWebhookIdInContext(ctx context.Context, webhookId string) context.Context {
	return appctx.Set(ctx, ContextKeyWebhookId, webhookId)
}
