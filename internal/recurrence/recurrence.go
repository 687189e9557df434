// Package recurrence converts event repetition descriptors to RFC 5545
// recurrence rules. Rules are only validated and rendered, never expanded.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"eventcalendar/internal/domain"
)

// indexed by domain day number, 0 = Sunday
var weekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

var frequencies = map[domain.Frequency]rrule.Frequency{
	domain.FrequencyDaily:   rrule.DAILY,
	domain.FrequencyWeekly:  rrule.WEEKLY,
	domain.FrequencyMonthly: rrule.MONTHLY,
	domain.FrequencyYearly:  rrule.YEARLY,
}

// Validate returns the problems with rep for an event starting at dtstart.
// A nil rep is valid.
func Validate(rep *domain.Repetition, dtstart time.Time) []string {
	if rep == nil {
		return nil
	}
	var problems []string
	if _, ok := frequencies[rep.Frequency]; !ok {
		problems = append(problems, "repetition.frequency must be one of daily, weekly, monthly, yearly")
	}
	if rep.Interval < 0 {
		problems = append(problems, "repetition.interval must be at least 1")
	}
	if rep.Count < 0 {
		problems = append(problems, "repetition.count must be at least 1")
	}
	if rep.Count > 0 && rep.Until != nil {
		problems = append(problems, "repetition.count and repetition.until are mutually exclusive")
	}
	if rep.Until != nil && rep.Until.Before(dtstart) {
		problems = append(problems, "repetition.until must not be before startDate")
	}
	for _, d := range rep.DaysOfWeek {
		if d < 0 || d > 6 {
			problems = append(problems, fmt.Sprintf("repetition.daysOfWeek value %d out of range 0..6", d))
			break
		}
	}
	if len(problems) > 0 {
		return problems
	}
	opt, _ := option(rep, dtstart)
	if _, err := rrule.NewRRule(opt); err != nil {
		problems = append(problems, "repetition: "+err.Error())
	}
	return problems
}

// RuleString renders rep as the value of an RRULE property, for example
// "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE".
func RuleString(rep *domain.Repetition, dtstart time.Time) (string, error) {
	opt, err := option(rep, dtstart)
	if err != nil {
		return "", err
	}
	return opt.RRuleString(), nil
}

func option(rep *domain.Repetition, dtstart time.Time) (rrule.ROption, error) {
	freq, ok := frequencies[rep.Frequency]
	if !ok {
		return rrule.ROption{}, fmt.Errorf("unknown frequency %q", rep.Frequency)
	}
	opt := rrule.ROption{
		Freq:     freq,
		Interval: rep.Interval,
		Count:    rep.Count,
		Dtstart:  dtstart.UTC(),
	}
	if rep.Until != nil {
		opt.Until = rep.Until.UTC()
	}
	for _, d := range rep.DaysOfWeek {
		if d < 0 || d > 6 {
			return rrule.ROption{}, fmt.Errorf("day of week %d out of range", d)
		}
		opt.Byweekday = append(opt.Byweekday, weekdays[d])
	}
	return opt, nil
}
