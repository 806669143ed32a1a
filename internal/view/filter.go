// Package view turns the reconciled message list into what a client shows:
// tab, search and time-window filtering followed by a newest-first sort.
package view

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFilter = errors.New("invalid filter")

type Tab string

const (
	TabInbox  Tab = "Inbox"
	TabPinned Tab = "Pinned"
)

type TimeRange string

const (
	Range1d  TimeRange = "1d"
	Range7d  TimeRange = "7d"
	Range14d TimeRange = "14d"
	Range30d TimeRange = "30d"
)

var rangeDays = map[TimeRange]int64{
	Range1d:  1,
	Range7d:  7,
	Range14d: 14,
	Range30d: 30,
}

// Days returns the window size. ok is false for ranges that apply no window.
func (r TimeRange) Days() (days int64, ok bool) {
	days, ok = rangeDays[r]
	return days, ok
}

// Filter is the view state a user mutates through the UI.
type Filter struct {
	ActiveTab   Tab       `json:"activeTab"`
	SearchQuery string    `json:"searchQuery"`
	TimeRange   TimeRange `json:"timeRange"`
}

func DefaultFilter() Filter {
	return Filter{ActiveTab: TabInbox, TimeRange: Range30d}
}

func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inbox":
		return TabInbox, nil
	case "pinned":
		return TabPinned, nil
	}
	return "", fmt.Errorf("%w: unknown tab %q", ErrInvalidFilter, s)
}

func ParseTimeRange(s string) (TimeRange, error) {
	r := TimeRange(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := r.Days(); !ok {
		return "", fmt.Errorf("%w: unknown time range %q", ErrInvalidFilter, s)
	}
	return r, nil
}
