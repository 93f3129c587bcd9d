package dateutil

import (
	"fmt"
	"time"
)

var weekdays = map[time.Weekday]string{
	time.Monday:    "一",
	time.Tuesday:   "二",
	time.Wednesday: "三",
	time.Thursday:  "四",
	time.Friday:    "五",
	time.Saturday:  "六",
	time.Sunday:    "日",
}

// TimeContext renders wall-clock information in the bot's home timezone. The
// rendered strings are injected into chat prompts so the character answers
// time questions with the real current time.
type TimeContext struct {
	loc *time.Location
}

func NewTimeContext(timezone string) (*TimeContext, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}

	return &TimeContext{loc: loc}, nil
}

func (tc *TimeContext) Now() time.Time {
	return time.Now().In(tc.loc)
}

func (tc *TimeContext) Format(t time.Time) string {
	return t.In(tc.loc).Format("2006-01-02 15:04:05")
}

func (tc *TimeContext) Greeting(t time.Time) string {
	t = t.In(tc.loc)
	hour, minute := t.Hour(), t.Minute()

	switch {
	case hour >= 5 && hour < 11:
		return fmt.Sprintf("早安！現在是早上 %02d:%02d", hour, minute)
	case hour == 11:
		return fmt.Sprintf("快中午了！現在是 %02d:%02d", hour, minute)
	case hour == 12:
		return fmt.Sprintf("中午好！現在是 %02d:%02d", hour, minute)
	case hour >= 13 && hour < 18:
		return fmt.Sprintf("午安！現在是下午 %02d:%02d", hour, minute)
	case hour >= 18 && hour < 22:
		return fmt.Sprintf("晚上好！現在是晚上 %02d:%02d", hour, minute)
	default:
		return fmt.Sprintf("夜深了！現在是凌晨 %02d:%02d", hour, minute)
	}
}

func (tc *TimeContext) Detailed(t time.Time) string {
	t = t.In(tc.loc)
	return fmt.Sprintf("現在是 %s 星期%s %s",
		t.Format("2006年01月02日"), weekdays[t.Weekday()], t.Format("15:04:05"))
}
