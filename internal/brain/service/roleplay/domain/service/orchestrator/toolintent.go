package orchestrator

import (
	"strings"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
)

// Tool gating. The heuristic only decides whether tool definitions are
// attached to the invocation; the model itself decides whether to call
// any of them, and may refuse. The intent analysis covers the common
// case; keyword heuristics catch what it misses.

var timeKeywords = []string{
	"几点", "现在时间", "什么时间", "今天几号", "今天日期", "星期几", "礼拜几",
}

var searchKeywords = []string{
	"天气", "气温", "下雨", "新闻", "股价", "股票", "汇率", "比分", "赛果",
	"搜一下", "搜索", "查一下", "查查", "最新",
}

// needsTools reports whether this utterance warrants attaching tool
// definitions to the reply invocation.
func needsTools(content string, intent *entity.IntentAnalysis) bool {
	if intent != nil && intent.NeedTool {
		return true
	}
	for _, kw := range timeKeywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	for _, kw := range searchKeywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}
