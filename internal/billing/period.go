package billing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var quarterLabel = regexp.MustCompile(`^Q([1-4])-(\d{4})$`)

// QuarterRange resolves a BAS quarter label such as "Q2-2024" into its
// inclusive calendar date range. Quarters start in January: Q1 covers
// January through March, Q4 covers October through December.
func QuarterRange(label string) (start, end time.Time, err error) {
	m := quarterLabel.FindStringSubmatch(label)
	if m == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("billing: invalid quarter label %q", label)
	}
	q, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	startMonth := time.Month((q-1)*3 + 1)
	start = time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the following month is the last day of the quarter.
	end = time.Date(year, startMonth+3, 0, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}

// CurrentQuarter returns the label of the quarter containing t.
func CurrentQuarter(t time.Time) string {
	q := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("Q%d-%d", q, t.Year())
}
