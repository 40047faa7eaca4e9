package service

import (
	"time"

	"github.com/roupadegala/servicecontrol/internal/domain"
)

type settings struct {
	now          func() time.Time
	location     *time.Location
	upcomingDays int
}

// Option customises the lifecycle engine and the reporter
type Option func(*settings)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithLocation sets the shop timezone used to decide what "today" is
func WithLocation(loc *time.Location) Option {
	return func(s *settings) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithUpcomingWindow sets how many days ahead the dashboard looks
func WithUpcomingWindow(days int) Option {
	return func(s *settings) {
		if days > 0 {
			s.upcomingDays = days
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{now: time.Now, location: time.UTC, upcomingDays: 10}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) today() time.Time {
	return domain.Today(s.now(), s.location)
}
