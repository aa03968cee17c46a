package entity

// PlotLine is one parsed schedule line of a daily plot file, e.g.
// "08:30-09:00 晨跑" or "22:00-xx:xx 睡前读书" (open-ended).
type PlotLine struct {
	// StartMin/EndMin are minutes since midnight. EndMin is meaningless
	// when OpenEnded is true.
	StartMin  int
	EndMin    int
	OpenEnded bool
	// Text is the narrative part after the time range.
	Text string
	// Raw is the original line, kept for prompt injection.
	Raw string
}

// PlotWindow is what the character has "lived so far today" at a moment:
// the ordered lines up to now, with the last one being the current moment.
type PlotWindow struct {
	Lines []string
	// Current is the line describing this moment; empty when no plot file
	// could be resolved.
	Current string
}

// Empty reports whether the window carries no plot content.
func (w PlotWindow) Empty() bool { return len(w.Lines) == 0 }
