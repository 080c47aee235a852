package timeutil

import "fmt"

// daysFromCivil converts a proleptic-Gregorian civil date to the number of
// days relative to 1970-01-01, using Howard Hinnant's days_from_civil
// algorithm (http://howardhinnant.github.io/date_algorithms.html). It is
// pure integer arithmetic with no host-OS calendar dependency, as spec.md
// §4.1/§9 requires for deterministic tests.
func daysFromCivil(year, month, day int) int64 {
	y := int64(year)
	if month <= 2 {
		y--
	}
	era := y
	if y < 0 {
		era = y - 399
	}
	era /= 400
	yoe := y - era*400
	mp := (int64(month) + 9) % 12
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// civilFromDays is the inverse of daysFromCivil.
func civilFromDays(days int64) (year, month, day int) {
	z := days + 719468
	era := z
	if z < 0 {
		era = z - 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return int(y), int(m), int(d)
}

var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// IsoDateForTimezone returns the YYYY-MM-DD wall-clock date of utcSeconds
// (Unix epoch seconds) shifted by offsetMinutes.
func IsoDateForTimezone(utcSeconds int64, offsetMinutes int) string {
	local := utcSeconds + int64(offsetMinutes)*60
	days := floorDiv(local, 86400)
	y, m, d := civilFromDays(days)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// FormatUTCSecondsAsISO8601 renders Unix epoch seconds as a UTC ISO-8601
// timestamp ("YYYY-MM-DDTHH:MM:SSZ"), used by providers whose native log
// format stores epoch time rather than a ready-made timestamp string.
func FormatUTCSecondsAsISO8601(utcSeconds int64) string {
	days := floorDiv(utcSeconds, 86400)
	secOfDay := utcSeconds - days*86400
	y, m, d := civilFromDays(days)
	hh := secOfDay / 3600
	mm := (secOfDay % 3600) / 60
	ss := secOfDay % 60
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02dZ", y, m, d, hh, mm, ss)
}

// DisplayDate renders an ISO date (YYYY-MM-DD) as the "Mon D, YYYY" form
// DailySummary.display_date uses.
func DisplayDate(isoDate string) string {
	var y, m, d int
	if _, err := fmt.Sscanf(isoDate, "%04d-%02d-%02d", &y, &m, &d); err != nil || m < 1 || m > 12 {
		return isoDate
	}
	return fmt.Sprintf("%s %d, %04d", monthAbbrev[m-1], d, y)
}

// FormatTimezoneLabel renders an offset as "UTC" (for zero) or "±HH:MM".
func FormatTimezoneLabel(offsetMinutes int) string {
	if offsetMinutes == 0 {
		return "UTC"
	}
	sign := "+"
	abs := offsetMinutes
	if abs < 0 {
		sign = "-"
		abs = -abs
	}
	return fmt.Sprintf("%s%02d:%02d", sign, abs/60, abs%60)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ISOWeek returns the ISO-8601 (year, week) for the given local civil date
// (YYYY-MM-DD). Weeks run Monday–Sunday and belong to the year containing
// their Thursday, matching Go's time.Time.ISOWeek semantics but computed
// purely from civil-date arithmetic so it matches daysFromCivil exactly.
func ISOWeek(isoDate string) (year, week int, err error) {
	var y, m, d int
	if _, scanErr := fmt.Sscanf(isoDate, "%04d-%02d-%02d", &y, &m, &d); scanErr != nil {
		return 0, 0, ErrInvalidDate
	}
	days := daysFromCivil(y, m, d)
	// Weekday: 1970-01-01 was a Thursday. ISO weekday: Mon=1..Sun=7.
	weekday := int(((days%7)+7+3)%7) + 1
	thursday := days + int64(4-weekday)
	ty, _, _ := civilFromDays(thursday)
	jan1 := daysFromCivil(ty, 1, 1)
	week = int((thursday-jan1)/7) + 1
	return ty, week, nil
}

// WeekBounds returns the Monday and Sunday (inclusive, YYYY-MM-DD) of the
// ISO week containing isoDate.
func WeekBounds(isoDate string) (start, end string, err error) {
	var y, m, d int
	if _, scanErr := fmt.Sscanf(isoDate, "%04d-%02d-%02d", &y, &m, &d); scanErr != nil {
		return "", "", ErrInvalidDate
	}
	days := daysFromCivil(y, m, d)
	weekday := int(((days%7)+7+3)%7) + 1
	monday := days - int64(weekday-1)
	sunday := monday + 6
	my, mm, md := civilFromDays(monday)
	sy, sm, sd := civilFromDays(sunday)
	return fmt.Sprintf("%04d-%02d-%02d", my, mm, md), fmt.Sprintf("%04d-%02d-%02d", sy, sm, sd), nil
}
