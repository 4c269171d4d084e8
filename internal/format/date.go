package format

import (
	"fmt"
	"time"
)

// MonthName returns the Portuguese name of the month.
func MonthName(month time.Month) string {
	names := map[time.Month]string{
		time.January:   "janeiro",
		time.February:  "fevereiro",
		time.March:     "março",
		time.April:     "abril",
		time.May:       "maio",
		time.June:      "junho",
		time.July:      "julho",
		time.August:    "agosto",
		time.September: "setembro",
		time.October:   "outubro",
		time.November:  "novembro",
		time.December:  "dezembro",
	}
	return names[month]
}

// AppointmentDate renders a date the way booking notifications phrase it:
// "dia 22 de junho, às 8:00h".
func AppointmentDate(t time.Time) string {
	return fmt.Sprintf("dia %02d de %s, às %d:%02dh",
		t.Day(), MonthName(t.Month()), t.Hour(), t.Minute())
}
