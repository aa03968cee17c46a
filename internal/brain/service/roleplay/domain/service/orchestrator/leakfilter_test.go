package orchestrator_test

import (
	"testing"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/orchestrator"
)

func TestHasLeak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"plain speech", "今天天气真不错,我们出去走走吧。", false},
		{"short stage direction", "好啊(笑),走吧。", false},
		{"full width stage direction", "嗯……（叹气）算了。", false},
		{"combined interjections", "（苦笑着摇头……）你说得对。", true},
		{"interjection only compound", "（笑、点头）好。", false},
		{"forbidden marker", "好的(内心OS:他到底想干什么)我们走吧。", true},
		{"strategy marker short", "（策略）先稳住他。", true},
		{"narrated inner state", "没事(我心想这个人真烦)真的没事。", true},
		{"long non whitelisted span", "(转身看向窗外默默流泪了很久)我没事。", true},
		{"unclosed leaking span", "好吧（内心OS:其实我很生气", true},
		{"nested parens", "他说（原话是（心理活动:别信他））好的。", true},
		{"empty string", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := orchestrator.HasLeak(tt.in); got != tt.want {
				t.Errorf("HasLeak(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestScrub(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "removes leaking span keeps speech",
			in:   "没事(内心OS:烦死了)真的没事。",
			want: "没事真的没事。",
		},
		{
			name: "keeps allowed stage direction",
			in:   "好啊(笑),走吧。",
			want: "好啊(笑),走吧。",
		},
		{
			name: "removes unclosed trailing leak",
			in:   "好吧（心想:其实我不想去",
			want: "好吧",
		},
		{
			name: "mixed spans",
			in:   "（叹气）算了（策略:先答应他）就这样吧。",
			want: "（叹气）算了就这样吧。",
		},
		{
			name: "untouched plain text",
			in:   "明天见。",
			want: "明天见。",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := orchestrator.Scrub(tt.in)
			if got != tt.want {
				t.Errorf("Scrub(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScrubIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"没事(内心OS:烦死了)真的没事。",
		"好啊(笑),走吧。",
		"（叹气）算了（策略:先答应他）就这样吧。",
		"好吧（心想:其实我不想去",
		"他说（原话是（心理活动:别信他））好的。",
		"普通的一句话。",
	}
	for _, in := range inputs {
		once := orchestrator.Scrub(in)
		twice := orchestrator.Scrub(once)
		if once != twice {
			t.Errorf("Scrub not idempotent for %q: first %q, second %q", in, once, twice)
		}
		if orchestrator.HasLeak(once) {
			t.Errorf("Scrub(%q) = %q still leaks", in, once)
		}
	}
}
