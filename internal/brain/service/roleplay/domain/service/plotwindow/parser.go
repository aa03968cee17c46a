package plotwindow

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
)

// lineRe matches one schedule line: "HH:MM-HH:MM text" or "HH:MM-xx:xx text".
// Anything else in the file is ignored.
var lineRe = regexp.MustCompile(`^(\d{1,2}:\d{2})-(\d{1,2}:\d{2}|\w+:\w+)\s+(.+)$`)

// ParseLines parses the plot lines of a daily plot file, sorted by start
// minute. Unmatched lines are skipped.
func ParseLines(content string) []entity.PlotLine {
	var lines []entity.PlotLine
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		m := lineRe.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		start, ok := parseMinutes(m[1])
		if !ok {
			continue
		}
		line := entity.PlotLine{
			StartMin: start,
			Text:     m[3],
			Raw:      raw,
		}
		if end, ok := parseMinutes(m[2]); ok {
			line.EndMin = end
		} else {
			line.OpenEnded = true
		}
		lines = append(lines, line)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].StartMin < lines[j].StartMin })
	return lines
}

// ParseFile reads and parses one plot file.
func ParseFile(path string) ([]entity.PlotLine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLines(string(data)), nil
}

func parseMinutes(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
