package projections

import (
	"time"

	"kitaportal/internal/domain/slot"
)

// DayCell is one calendar cell in the month grid.
type DayCell struct {
	Date     string // YYYY-MM-DD
	Day      int
	InMonth  bool
	Today    bool
	Bookable bool
	Events   []CalendarEvent
}

// MonthGrid arranges calendar events into week rows for rendering.
// Weeks run Monday to Sunday.
type MonthGrid struct {
	Year      int
	Month     time.Month
	Label     string // e.g. "June 2026"
	PrevMonth string // YYYY-MM target for navigation
	NextMonth string
	Weeks     [][]DayCell
}

// BuildMonthGrid lays out the given month, attaching events and
// bookability per date. Leading and trailing cells from adjacent
// months are included so every week row has seven cells.
func BuildMonthGrid(year int, month time.Month, events []CalendarEvent, calendar slot.Calendar, today time.Time) MonthGrid {
	byDate := make(map[string][]CalendarEvent)
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	grid := MonthGrid{
		Year:      year,
		Month:     month,
		Label:     first.Format("January 2006"),
		PrevMonth: first.AddDate(0, -1, 0).Format("2006-01"),
		NextMonth: first.AddDate(0, 1, 0).Format("2006-01"),
	}

	// Walk back to the Monday on or before the 1st.
	cursor := first
	for cursor.Weekday() != time.Monday {
		cursor = cursor.AddDate(0, 0, -1)
	}

	lastDay := first.AddDate(0, 1, -1)
	todayStr := today.Format(slot.DateLayout)
	for !cursor.After(lastDay) {
		week := make([]DayCell, 0, 7)
		for i := 0; i < 7; i++ {
			date := cursor.Format(slot.DateLayout)
			week = append(week, DayCell{
				Date:     date,
				Day:      cursor.Day(),
				InMonth:  cursor.Month() == month,
				Today:    date == todayStr,
				Bookable: calendar.Bookable(date),
				Events:   byDate[date],
			})
			cursor = cursor.AddDate(0, 0, 1)
		}
		grid.Weeks = append(grid.Weeks, week)
	}

	return grid
}
