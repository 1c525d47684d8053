package utils

import (
	"strings"
	"time"
)

// DatePlaceholder é exibido no lugar de datas vazias
const DatePlaceholder = "-"

func ParseDate(dateStr string) (*time.Time, error) {
	var date time.Time

	if dateStr != "" {
		incomingDate, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			return nil, err
		}

		date = incomingDate
	}

	return &date, nil
}

// ToDisplay converte YYYY-MM-DD em DD/MM/YYYY. Um horário após a data
// ("2024-03-01 00:00:00" ou "2024-03-01T00:00:00") é descartado.
func ToDisplay(wireDate string) string {
	if wireDate == "" {
		return DatePlaceholder
	}

	if i := strings.IndexAny(wireDate, " T"); i >= 0 {
		wireDate = wireDate[:i]
	}

	parts := strings.Split(wireDate, "-")
	if len(parts) != 3 {
		return wireDate
	}

	year, month, day := parts[0], parts[1], parts[2]
	return day + "/" + month + "/" + year
}

// ToWire converte DD/MM/YYYY em YYYY-MM-DD.
func ToWire(displayDate string) string {
	if displayDate == "" {
		return ""
	}

	parts := strings.Split(displayDate, "/")
	if len(parts) != 3 {
		return displayDate
	}

	day, month, year := parts[0], parts[1], parts[2]
	return year + "-" + month + "-" + day
}
