package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"zapisnik/internal/availability"
	"zapisnik/internal/booking"
)

// GenerateCalendarKeyboard builds the date picker for a given month.
// occupiedDates keys are YYYY-MM-DD strings; occupied days show a cross
// and press back with an occupied_ callback instead of date_.
func GenerateCalendarKeyboard(year, month int, occupiedDates map[string]bool) tgbotapi.InlineKeyboardMarkup {
	firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	weekdayOffset := int(firstDay.Weekday())
	if weekdayOffset == 0 {
		weekdayOffset = 7 // make Monday-first grid
	}
	daysInMonth := daysIn(time.Month(month), year)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0)
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d", monthNames[month-1], year), "empty"),
	})
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Пн", "empty"),
		tgbotapi.NewInlineKeyboardButtonData("Вт", "empty"),
		tgbotapi.NewInlineKeyboardButtonData("Ср", "empty"),
		tgbotapi.NewInlineKeyboardButtonData("Чт", "empty"),
		tgbotapi.NewInlineKeyboardButtonData("Пт", "empty"),
		tgbotapi.NewInlineKeyboardButtonData("Сб", "empty"),
		tgbotapi.NewInlineKeyboardButtonData("Вс", "empty"),
	})

	day := 1
	for day <= daysInMonth {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
		for col := 1; col <= 7; col++ {
			if len(rows) == 2 && col < weekdayOffset {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "empty"))
				continue
			}
			if day > daysInMonth {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "empty"))
				continue
			}
			dateStr := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			if occupiedDates[dateStr] {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("❌ %d", day), "occupied_"+dateStr))
			} else {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("%d", day), "date_"+dateStr))
			}
			day++
		}
		rows = append(rows, row)
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// GenerateTimeKeyboard builds the slot picker for a chosen date, one slot
// per row. Taken slots show a stop sign and press back with the shared
// occupied callback.
func GenerateTimeKeyboard(date string, slots []availability.Slot) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(slots))
	for _, slot := range slots {
		if slot.Available {
			rows = append(rows, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData(slot.Label, fmt.Sprintf("time_%s_%s", slot.Label, date)),
			})
		} else {
			rows = append(rows, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("⛔ "+slot.Label, "occupied"),
			})
		}
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// GenerateReasonKeyboard builds the meeting reason picker.
func GenerateReasonKeyboard() tgbotapi.InlineKeyboardMarkup {
	reasons := booking.Reasons()
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(reasons))
	for _, r := range reasons {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(r.Label, "reason_"+r.Token),
		})
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// GenerateDecisionKeyboard builds the accept/reject buttons attached to an
// admin notification.
func GenerateDecisionKeyboard(appointmentID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Принять", fmt.Sprintf("accept_%d", appointmentID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("reject_%d", appointmentID)),
		),
	)
}

func daysIn(m time.Month, year int) int {
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
