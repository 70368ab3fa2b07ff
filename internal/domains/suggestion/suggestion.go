// Package suggestion computes stay date pairs offered on the booking inquiry pages.
package suggestion

import (
	"context"
	"fmt"
	"time"

	"lodge/infras/otel"
	"lodge/shared/constant"
	"lodge/shared/timezone"
)

//go:generate go run go.uber.org/mock/mockgen -source=./suggestion.go -destination=./mocks/suggestion_mock.go -package=mocks

const (
	weekendNights  = 2
	checkInCutoff  = 12
	weekendStart   = int(time.Thursday)
	daysInWeek     = 7
	displayPattern = "%s - %s"
)

type StayDates struct {
	CheckIn     time.Time
	CheckOut    time.Time
	DisplayText string
}

type StayDatesResponse struct {
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Nights      int    `json:"nights"`
	DisplayText string `json:"display_text"`
}

func (r *StayDatesResponse) FromStayDates(d StayDates) {
	r.CheckIn = d.CheckIn.Format(constant.DayFormat)
	r.CheckOut = d.CheckOut.Format(constant.DayFormat)
	r.Nights = calendarDays(d.CheckIn, d.CheckOut)
	r.DisplayText = d.DisplayText
}

// calendarDays counts date changes between from and to, so a 23 or 25 hour DST day is still one night.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()

	days := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).Sub(time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC))

	return int(days.Hours()) / 24
}

// NextWeekend returns the coming Thursday to Saturday stay. From Thursday onwards it skips to
// the following week, so the check-in is always strictly after now's calendar date.
func NextWeekend(now time.Time) StayDates {
	today := timezone.StartOfDay(now)
	dow := int(today.Weekday())

	delta := weekendStart - dow
	if delta <= 0 {
		delta += daysInWeek
	}

	checkIn := today.AddDate(0, 0, delta)

	return newStayDates(checkIn, checkIn.AddDate(0, 0, weekendNights))
}

// ImmediateDates offers tonight when asked before noon, otherwise tomorrow night.
func ImmediateDates(now time.Time) StayDates {
	checkIn := timezone.StartOfDay(now)
	if now.Hour() >= checkInCutoff {
		checkIn = checkIn.AddDate(0, 0, 1)
	}

	return newStayDates(checkIn, checkIn.AddDate(0, 0, 1))
}

func newStayDates(checkIn, checkOut time.Time) StayDates {
	return StayDates{
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		DisplayText: fmt.Sprintf(displayPattern, checkIn.Format(constant.DisplayFormat), checkOut.Format(constant.DisplayFormat)),
	}
}

type Suggestion interface {
	NextWeekend(ctx context.Context) StayDatesResponse
	ImmediateDates(ctx context.Context) StayDatesResponse
}

type serviceImpl struct {
	clock timezone.Clock
	otel  otel.Otel
}

func New(clock timezone.Clock, otel otel.Otel) Suggestion {
	return &serviceImpl{
		clock: clock,
		otel:  otel,
	}
}

func (s *serviceImpl) NextWeekend(ctx context.Context) (res StayDatesResponse) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".NextWeekend")
	defer scope.End()

	res.FromStayDates(NextWeekend(s.clock.Now()))

	return res
}

func (s *serviceImpl) ImmediateDates(ctx context.Context) (res StayDatesResponse) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ImmediateDates")
	defer scope.End()

	res.FromStayDates(ImmediateDates(s.clock.Now()))

	return res
}
