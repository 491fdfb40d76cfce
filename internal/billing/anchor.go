package billing

import "time"

// Anchor captures which periods count as the current and previous billing
// periods for a given wall-clock date. Billing runs one full period behind
// the calendar: in June the current billing month is May, and in Q3 the
// current billing quarter is Q2. "Previous" is one further period back.
type Anchor struct {
	CurrentMonth    Period
	PreviousMonth   Period
	CurrentQuarter  Period
	PreviousQuarter Period
}

// ComputeAnchor derives the billing anchor from the given date. The date is
// injected rather than read from the ambient clock so the computation is
// repeatable and testable.
func ComputeAnchor(now time.Time) Anchor {
	currentMonth := PeriodContaining(now, ScheduleMonthly).Prev()
	currentQuarter := PeriodContaining(now, ScheduleQuarterly).Prev()

	return Anchor{
		CurrentMonth:    currentMonth,
		PreviousMonth:   currentMonth.Prev(),
		CurrentQuarter:  currentQuarter,
		PreviousQuarter: currentQuarter.Prev(),
	}
}

// Current returns the current billing period at the requested cadence
func (a Anchor) Current(schedule Schedule) Period {
	if schedule == ScheduleQuarterly {
		return a.CurrentQuarter
	}
	return a.CurrentMonth
}
