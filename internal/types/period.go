package types

import (
	"fmt"
	"regexp"
	"strconv"
)

// annualSlot is the quarter number stored records use to mark a full-year summary.
const annualSlot = 5

var periodPattern = regexp.MustCompile(`\(Q(\d+)/(\d+)\)`)

// Period is a reporting period: either a whole year or one quarter of it.
type Period struct {
	Year    int
	Quarter int // 1-4; zero when Annual is set
	Annual  bool
}

func AnnualPeriod(year int) Period {
	return Period{Year: year, Annual: true}
}

func QuarterPeriod(year, quarter int) Period {
	return Period{Year: year, Quarter: quarter}
}

// Slot returns the quarter slot used by the stored text format, with 5 for annual records.
func (p Period) Slot() int {
	if p.Annual {
		return annualSlot
	}
	return p.Quarter
}

// IsZero reports whether no period could be determined.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Quarter == 0 && !p.Annual
}

// After orders periods by (year, slot).
func (p Period) After(o Period) bool {
	if p.Year != o.Year {
		return p.Year > o.Year
	}
	return p.Slot() > o.Slot()
}

// Tag renders the period the way ingested text embeds it, e.g. Q5/2024.
func (p Period) Tag() string {
	return fmt.Sprintf("Q%d/%d", p.Slot(), p.Year)
}

func (p Period) String() string {
	if p.IsZero() {
		return "unknown"
	}
	if p.Annual {
		return fmt.Sprintf("Năm %d", p.Year)
	}
	return fmt.Sprintf("Q%d/%d", p.Quarter, p.Year)
}

// ParsePeriod extracts the first "(Qn/yyyy)" tag from text.
func ParsePeriod(text string) Period {
	m := periodPattern.FindStringSubmatch(text)
	if len(m) < 3 {
		return Period{}
	}

	slot, err := strconv.Atoi(m[1])
	if err != nil {
		return Period{}
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return Period{}
	}

	if slot == annualSlot {
		return AnnualPeriod(year)
	}
	return QuarterPeriod(year, slot)
}
