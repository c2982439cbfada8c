package audit

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"zapisnik/internal/db"
	"zapisnik/internal/model"
)

func TestExport(t *testing.T) {
	database, err := db.NewDB(":memory:")
	require.NoError(t, err)
	defer database.Close()
	ctx := context.Background()

	a := &model.Appointment{
		User:    "@alice",
		ChatID:  100,
		Time:    "2025-03-15 14:00",
		Reason:  "По работе",
		Message: "буду к двум",
	}
	require.NoError(t, database.CreateAppointment(ctx, a))

	exporter := NewExporter(database)
	data, err := exporter.Export(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer file.Close()

	require.Contains(t, file.GetSheetList(), "appointments")

	rows, err := file.GetRows("appointments")
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one data row")
	assert.Contains(t, rows[0], "user")
	assert.Contains(t, rows[0], "status")
	assert.Contains(t, rows[1], "@alice")
	assert.Contains(t, rows[1], "pending")
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "appointments", sheetName("appointments"))

	long := "a_very_long_table_name_over_thirty_one_characters"
	assert.Len(t, sheetName(long), 31)
}
