package domain

import (
	"fmt"
	"time"
)

// Period - половина суток в 12-часовом формате
type Period string

const (
	PeriodAM Period = "AM"
	PeriodPM Period = "PM"
)

// TimeSelection - каноническое представление введённого пользователем времени
type TimeSelection struct {
	Hour12 int    `json:"hour12"`
	Hour24 int    `json:"hour24"`
	Minute int    `json:"minute"`
	Period Period `json:"period"`
}

// MinutePadded возвращает минуты с ведущим нулём
func (t TimeSelection) MinutePadded() string {
	return fmt.Sprintf("%02d", t.Minute)
}

// Summary возвращает строку вида "7:05 PM"
func (t TimeSelection) Summary() string {
	return fmt.Sprintf("%d:%s %s", t.Hour12, t.MinutePadded(), t.Period)
}

// On возвращает момент времени в указанный день в часовом поясе day
func (t TimeSelection) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour24, t.Minute, 0, 0, day.Location())
}

// TimeSummary возвращает описание выбранного времени или "Not specified"
func TimeSummary(t *TimeSelection) string {
	if t == nil {
		return "Not specified"
	}
	return t.Summary()
}

// DurationWindow - длительность в днях и часах; никогда не бывает невалидной, только неотрицательной
type DurationWindow struct {
	Days  int `json:"days"`
	Hours int `json:"hours"`
}

// TotalHours возвращает длительность в часах
func (w DurationWindow) TotalHours() int {
	return w.Days*24 + w.Hours
}
