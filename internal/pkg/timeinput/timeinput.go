// Package timeinput разбирает введённое пользователем время (12-часовой формат) и длительность в днях и часах.
package timeinput

import (
	"strconv"
	"strings"

	"github.com/scoutscape/internal/domain"
	apperrors "github.com/scoutscape/internal/pkg/errors"
)

// ParseClock возвращает каноническое время или nil, если ввод некорректен.
// Час 1-12, минуты 0-59; любой период кроме "AM" (без учёта регистра) считается PM.
func ParseClock(hour, minute, period string) *domain.TimeSelection {
	h, err := strconv.Atoi(strings.TrimSpace(hour))
	if err != nil || h < 1 || h > 12 {
		return nil
	}
	m, err := strconv.Atoi(strings.TrimSpace(minute))
	if err != nil || m < 0 || m > 59 {
		return nil
	}

	p := NormalizePeriod(period)
	h24 := h % 12
	if p == domain.PeriodPM {
		h24 += 12
	}

	return &domain.TimeSelection{
		Hour12: h,
		Hour24: h24,
		Minute: m,
		Period: p,
	}
}

// NormalizePeriod приводит флаг к AM или PM
func NormalizePeriod(period string) domain.Period {
	if strings.EqualFold(strings.TrimSpace(period), string(domain.PeriodAM)) {
		return domain.PeriodAM
	}
	return domain.PeriodPM
}

// HasClockInput сообщает, ввёл ли пользователь хоть что-то в поля часа или минут
func HasClockInput(hour, minute string) bool {
	return strings.TrimSpace(hour) != "" || strings.TrimSpace(minute) != ""
}

// Resolve различает три состояния: пустые поля (nil, nil), корректное время и ошибку ErrInvalidTime
func Resolve(hour, minute, period string) (*domain.TimeSelection, error) {
	if !HasClockInput(hour, minute) {
		return nil, nil
	}
	sel := ParseClock(hour, minute, period)
	if sel == nil {
		return nil, apperrors.ErrInvalidTime
	}
	return sel, nil
}

// ParseDuration никогда не возвращает ошибку: пустые, нечисловые и отрицательные значения дают 0
func ParseDuration(days, hours string) domain.DurationWindow {
	return domain.DurationWindow{
		Days:  nonNegative(days),
		Hours: nonNegative(hours),
	}
}

func nonNegative(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
