package classify

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive span of calendar days mentioned in a question.
type DateRange struct {
	Start time.Time
	End   time.Time
	// Kind is one of custom_range, single_date, named_period, relative_period, default_recent.
	Kind string
	// Period holds the phrase that produced a named or relative range.
	Period string
}

func (d DateRange) StartDate() string { return d.Start.Format(dateLayout) }
func (d DateRange) EndDate() string   { return d.End.Format(dateLayout) }

// Today reports whether the range is just the current day.
func (d DateRange) Today() bool {
	return d.Kind == "named_period" && d.Period == "hôm nay"
}

var (
	dateToken     = `(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`
	rangePattern  = regexp.MustCompile(dateToken + `.*?` + dateToken)
	singlePattern = regexp.MustCompile(dateToken)
	namedPattern  = regexp.MustCompile(`(hôm nay|tuần này|tháng này|năm nay|hôm qua|tuần trước|tháng trước|năm trước)`)
	relPattern    = regexp.MustCompile(`(\d+)\s*(ngày|tuần|tháng|năm)\s*(trước|gần đây|vừa qua|qua)`)

	dateLayouts = []string{"2/1/2006", "2-1-2006", "2/1/06", "2-1-06"}
)

var historyWords = []string{"lịch sử", "historical"}

// ParseDateRange finds the first date expression in text. Explicit dates win over named
// periods, which win over relative periods. Questions about history with no date default
// to the current month.
func ParseDateRange(text string, now time.Time) (DateRange, bool) {
	q := strings.ToLower(text)
	today := truncateDay(now)

	if m := rangePattern.FindStringSubmatch(q); m != nil {
		start, okStart := parseDate(m[1], now.Location())
		end, okEnd := parseDate(m[2], now.Location())
		if okStart && okEnd {
			return DateRange{Start: start, End: end, Kind: "custom_range"}, true
		}
	}

	if m := singlePattern.FindStringSubmatch(q); m != nil {
		if d, ok := parseDate(m[1], now.Location()); ok {
			return DateRange{Start: d, End: d, Kind: "single_date"}, true
		}
	}

	if m := namedPattern.FindStringSubmatch(q); m != nil {
		start, end := namedPeriod(m[1], today)
		return DateRange{Start: start, End: end, Kind: "named_period", Period: m[1]}, true
	}

	if m := relPattern.FindStringSubmatch(q); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return DateRange{
				Start:  relativeStart(n, m[2], today),
				End:    today,
				Kind:   "relative_period",
				Period: m[0],
			}, true
		}
	}

	for _, w := range historyWords {
		if strings.Contains(q, w) {
			start, end := namedPeriod("tháng này", today)
			return DateRange{Start: start, End: end, Kind: "default_recent"}, true
		}
	}

	return DateRange{}, false
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func namedPeriod(period string, today time.Time) (start, end time.Time) {
	y, m, _ := today.Date()
	loc := today.Location()

	switch period {
	case "hôm qua":
		d := today.AddDate(0, 0, -1)
		return d, d
	case "tuần này":
		return today.AddDate(0, 0, -weekdayOffset(today)), today
	case "tuần trước":
		start = today.AddDate(0, 0, -weekdayOffset(today)-7)
		return start, start.AddDate(0, 0, 6)
	case "tháng này":
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), today
	case "tháng trước":
		first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return first.AddDate(0, -1, 0), first.AddDate(0, 0, -1)
	case "năm nay":
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), today
	case "năm trước":
		return time.Date(y-1, time.January, 1, 0, 0, 0, 0, loc), time.Date(y-1, time.December, 31, 0, 0, 0, 0, loc)
	default:
		return today, today
	}
}

// weekdayOffset counts days since Monday.
func weekdayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func relativeStart(n int, unit string, today time.Time) time.Time {
	switch unit {
	case "ngày":
		return today.AddDate(0, 0, -n)
	case "tuần":
		return today.AddDate(0, 0, -7*n)
	case "tháng":
		return today.AddDate(0, 0, -30*n)
	default:
		return today.AddDate(-n, 0, 0)
	}
}
