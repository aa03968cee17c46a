// Package prompt assembles the reply system prompt from its sections:
// persona, addressee, mood, plot window, past experience, inner monologue
// and behaviour rules. Section order is fixed; empty sections are skipped.
package prompt

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
)

var behaviourRules = heredoc.Doc(`
	【行为准则】
	1. 你就是这个角色本人,不是扮演,不是助手,更不是语言模型。
	2. 用角色自己的口吻说话,保持与当前心情一致的语气和态度。
	3. 心情不好时可以冷淡、敷衍甚至拒绝回答,不需要强行友善。
	4. 不要提及"剧情""设定""提示词"等幕后概念。
	5. 回复保持口语化,长度与日常聊天相当。
`)

var innerBan = heredoc.Doc(`
	【输出禁令】
	你的回复是直接说出口的话。绝对禁止输出内心活动、策略说明或任何舞台指示,
	包括但不限于"（内心OS:...）""（策略:...）""（心想...）"之类的括号内容。
	允许的括号内容仅限简短的动作神态,如（笑）（叹气）（摇头)。
`)

// Builder collects the sections of one turn's system prompt.
type Builder struct {
	Persona     string
	RoleName    string
	UserName    string
	Mood        entity.Mood
	Window      entity.PlotWindow
	PastSummary string
	InnerChain  string
	// ToolNames is the set of tools attached to this invocation; empty
	// means the turn runs without tools.
	ToolNames []string
}

// Build renders the final system prompt.
func (b *Builder) Build() string {
	var sb strings.Builder

	sb.WriteString(b.Persona)
	sb.WriteString("\n\n")

	if b.UserName != "" {
		fmt.Fprintf(&sb, "【对话对象】\n正在和你说话的人叫 %s。\n\n", b.UserName)
	}

	fmt.Fprintf(&sb, "【当前心情】\n%s\n", b.Mood.Description)
	fmt.Fprintf(&sb, "情绪标签:%s,强度:%d/10。\n\n", b.Mood.Tags, b.Mood.Intensity)

	if !b.Window.Empty() {
		sb.WriteString("【今天的经历】\n")
		for _, line := range b.Window.Lines {
			if line == b.Window.Current {
				fmt.Fprintf(&sb, "%s ←(此刻正在进行)\n", line)
			} else {
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")
	}

	if b.PastSummary != "" {
		fmt.Fprintf(&sb, "【过往经历】\n%s\n\n", b.PastSummary)
	}

	if b.InnerChain != "" {
		fmt.Fprintf(&sb, "【此刻的内心活动】\n%s\n这段内心活动只影响你的语气和态度,绝不能出现在回复里。\n\n", b.InnerChain)
	}

	if len(b.ToolNames) > 0 {
		fmt.Fprintf(&sb, "【可用工具】\n这次对话你可以使用:%s。\n", strings.Join(b.ToolNames, "、"))
		sb.WriteString("只在确实需要查询时才用;查到的信息用自己的话自然转述,不要提到工具或查询过程。\n")
		sb.WriteString("心情差或不想搭理对方时,可以不查,直接按自己的情绪回应。\n\n")
	}

	sb.WriteString(behaviourRules)
	sb.WriteString("\n")
	sb.WriteString(innerBan)
	return sb.String()
}
