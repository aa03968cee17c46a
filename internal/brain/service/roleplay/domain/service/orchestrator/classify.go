package orchestrator

import "strings"

// failureKind classifies a reply-generation error so the handler can tell
// the user something actionable instead of a stack trace.
type failureKind int

const (
	failureUnknown failureKind = iota
	// failureUnreachable covers geographic blocks, connection refusals and
	// timeouts. The turn degrades to a canned in-character reply.
	failureUnreachable
	// failureQuota covers rate limits and exhausted quotas. The turn
	// returns a system message and no reply is recorded.
	failureQuota
)

var unreachableHints = []string{
	"location is not supported",
	"user location",
	"connection refused",
	"connection reset",
	"no such host",
	"timeout",
	"deadline exceeded",
	"context canceled",
}

var quotaHints = []string{
	"rate limit",
	"rate_limit",
	"quota",
	"too many requests",
	"429",
	"insufficient_quota",
	"billing",
}

func classifyFailure(err error) failureKind {
	if err == nil {
		return failureUnknown
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range quotaHints {
		if strings.Contains(msg, hint) {
			return failureQuota
		}
	}
	for _, hint := range unreachableHints {
		if strings.Contains(msg, hint) {
			return failureUnreachable
		}
	}
	return failureUnknown
}

func failureSystemMessage(kind failureKind) string {
	switch kind {
	case failureUnreachable:
		return "模型服务暂时无法连接,角色先用简短的方式回应了你。"
	case failureQuota:
		return "模型调用额度已用尽,请稍后再试。"
	default:
		return "生成回复时出现问题,请稍后再试。"
	}
}
