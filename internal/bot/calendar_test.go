package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapisnik/internal/availability"
)

func TestGenerateCalendarKeyboard(t *testing.T) {
	occupied := map[string]bool{"2025-03-15": true}
	kb := GenerateCalendarKeyboard(2025, 3, occupied)

	// Header row plus weekday row plus at least four week rows.
	require.GreaterOrEqual(t, len(kb.InlineKeyboard), 6)
	assert.Equal(t, "Март 2025", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "Пн", kb.InlineKeyboard[1][0].Text)

	var free, taken, days int
	for _, row := range kb.InlineKeyboard[2:] {
		for _, btn := range row {
			switch data := *btn.CallbackData; {
			case data == "occupied_2025-03-15":
				assert.Equal(t, "❌ 15", btn.Text)
				taken++
				days++
			case data == "empty":
				assert.Equal(t, " ", btn.Text)
			default:
				assert.Contains(t, data, "date_2025-03-")
				free++
				days++
			}
		}
	}
	assert.Equal(t, 31, days)
	assert.Equal(t, 1, taken)
	assert.Equal(t, 30, free)
}

func TestCalendarMondayFirst(t *testing.T) {
	// 2025-03-01 is a Saturday, so the first week row starts with five pads.
	kb := GenerateCalendarKeyboard(2025, 3, nil)
	firstWeek := kb.InlineKeyboard[2]
	require.Len(t, firstWeek, 7)
	for col := 0; col < 5; col++ {
		assert.Equal(t, "empty", *firstWeek[col].CallbackData)
	}
	assert.Equal(t, "1", firstWeek[5].Text)
	assert.Equal(t, "2", firstWeek[6].Text)
}

func TestGenerateTimeKeyboard(t *testing.T) {
	slots := []availability.Slot{
		{Label: "12:00", Available: true},
		{Label: "13:00", Available: false},
	}
	kb := GenerateTimeKeyboard("2025-03-15", slots)

	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "12:00", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "time_12:00_2025-03-15", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "⛔ 13:00", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "occupied", *kb.InlineKeyboard[1][0].CallbackData)
}

func TestGenerateReasonKeyboard(t *testing.T) {
	kb := GenerateReasonKeyboard()
	require.Len(t, kb.InlineKeyboard, 4)
	assert.Equal(t, "По работе", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "reason_work", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "reason_other", *kb.InlineKeyboard[3][0].CallbackData)
}

func TestGenerateDecisionKeyboard(t *testing.T) {
	kb := GenerateDecisionKeyboard(42)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "accept_42", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "reject_42", *kb.InlineKeyboard[0][1].CallbackData)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, daysIn(2, 2024))
	assert.Equal(t, 28, daysIn(2, 2025))
	assert.Equal(t, 30, daysIn(4, 2025))
	assert.Equal(t, 31, daysIn(12, 2025))
}
