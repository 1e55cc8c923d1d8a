package providers

import (
	"context"

	"github.com/yungbote/codementor-backend/internal/observability"
)

// CallInfo collects what an adapter learned during one call. The dispatcher
// attaches it to the context; adapters fill it through the Report helpers.
type CallInfo struct {
	Model        string
	InputTokens  int
	OutputTokens int

	// Fallback names the reason a fallback object was returned instead of a
	// provider answer; FallbackErr is the error that caused it, if any.
	Fallback    string
	FallbackErr error
}

type callInfoKey struct{}

func WithCallInfo(ctx context.Context) (context.Context, *CallInfo) {
	info := &CallInfo{}
	return context.WithValue(ctx, callInfoKey{}, info), info
}

func callInfoFrom(ctx context.Context) *CallInfo {
	if info, ok := ctx.Value(callInfoKey{}).(*CallInfo); ok {
		return info
	}
	return nil
}

// ReportUsage records token usage for the current call.
func ReportUsage(ctx context.Context, provider, model string, input, output int) {
	observability.Current().AddLLMTokens(provider, input, output)
	if info := callInfoFrom(ctx); info != nil {
		info.Model = model
		info.InputTokens += input
		info.OutputTokens += output
	}
}

// ReportFallback records that the adapter substituted a fallback object.
func ReportFallback(ctx context.Context, provider, op, reason string, cause error) {
	observability.Current().IncLLMFallback(provider, op, reason)
	if info := callInfoFrom(ctx); info != nil {
		info.Fallback = reason
		info.FallbackErr = cause
	}
}
