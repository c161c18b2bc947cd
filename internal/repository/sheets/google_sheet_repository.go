package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/guildsync/guildsync/internal/config"
	"github.com/guildsync/guildsync/internal/domain/models"
)

// Repository defines the persistence operations supported by the Google Sheets adapter.
type Repository interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
	WriteRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
	ApplyFormats(ctx context.Context, directives []models.FormatDirective) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetID       int64
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetID:       cfg.SheetID,
		logger:        logger,
	}, nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// WriteRows writes rows starting at the top-left cell of sheetRange. Values
// are stored as given, without spreadsheet parsing.
func (r *GoogleSheetRepository) WriteRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("RAW").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("write rows into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("rows written to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

// ApplyFormats sends the number format directives as a single batch update.
func (r *GoogleSheetRepository) ApplyFormats(ctx context.Context, directives []models.FormatDirective) error {
	if len(directives) == 0 {
		return nil
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{Requests: formatRequests(r.sheetID, directives)}
	if _, err := r.service.Spreadsheets.BatchUpdate(r.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("apply %d format directives: %w", len(directives), err)
	}

	r.logger.Debug("number formats applied", zap.Int("directives", len(directives)))
	return nil
}

func formatRequests(sheetID int64, directives []models.FormatDirective) []*sheetsapi.Request {
	requests := make([]*sheetsapi.Request, 0, len(directives))
	for _, d := range directives {
		grid := &sheetsapi.GridRange{
			SheetId:          sheetID,
			StartColumnIndex: int64(d.Column),
			EndColumnIndex:   int64(d.Column + 1),
			StartRowIndex:    int64(d.StartRow),
			EndRowIndex:      int64(d.EndRow),
			// zero is a valid sheet id and row index
			ForceSendFields: []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
		}

		requests = append(requests, &sheetsapi.Request{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range: grid,
				Cell: &sheetsapi.CellData{
					UserEnteredFormat: &sheetsapi.CellFormat{
						NumberFormat: &sheetsapi.NumberFormat{
							Type:    d.Kind,
							Pattern: d.Pattern,
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		})
	}
	return requests
}
