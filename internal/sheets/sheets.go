// Package sheets mirrors active appointments into a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"zapisnik/internal/events"
	"zapisnik/internal/model"
)

var header = []interface{}{"ID", "Пользователь", "Когда", "Причина", "Сообщение", "Статус", "Создана"}

// Store lists the appointments to mirror.
type Store interface {
	ListActive(ctx context.Context) ([]model.Appointment, error)
}

// SheetsService keeps one sheet in sync with the active appointments.
// The mirror is best effort: a failed sync is logged and retried on the
// next change.
type SheetsService struct {
	svc           *sheetsapi.Service
	store         Store
	spreadsheetID string
	sheetName     string
	logger        zerolog.Logger
}

// NewService authorizes against the Sheets API with a service account key.
func NewService(ctx context.Context, credentialsJSON []byte, spreadsheetID, sheetName string, store Store, logger zerolog.Logger) (*SheetsService, error) {
	conf, err := google.JWTConfigFromJSON(credentialsJSON, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	if sheetName == "" {
		sheetName = "Заявки"
	}
	return &SheetsService{
		svc:           svc,
		store:         store,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.With().Str("component", "sheets").Logger(),
	}, nil
}

// Sync rewrites the sheet from the current set of active appointments.
func (s *SheetsService) Sync(ctx context.Context) error {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active appointments: %w", err)
	}

	values := make([][]interface{}, 0, len(active)+1)
	values = append(values, header)
	for i := range active {
		values = append(values, appointmentRowValues(&active[i]))
	}

	clearRange := fmt.Sprintf("%s!A:G", s.sheetName)
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, fmt.Sprintf("%s!A1", s.sheetName), &sheetsapi.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}

	s.logger.Debug().Int("rows", len(active)).Msg("sheet synced")
	return nil
}

// Subscribe resyncs the sheet whenever a request is created or decided.
func (s *SheetsService) Subscribe(ctx context.Context, bus *events.Bus) {
	resync := func(events.Event) {
		if err := s.Sync(ctx); err != nil {
			s.logger.Error().Err(err).Msg("failed to sync sheet")
		}
	}
	bus.Subscribe(events.TypeAppointmentCreated, resync)
	bus.Subscribe(events.TypeAppointmentDecided, resync)
}

func appointmentRowValues(a *model.Appointment) []interface{} {
	return []interface{}{
		a.ID,
		a.User,
		a.Time,
		a.Reason,
		a.Message,
		a.Status,
		a.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
