package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/bhada/internal/common"
	"github.com/Veraticus/bhada/internal/model"
	"github.com/Veraticus/bhada/internal/report"
	"github.com/Veraticus/bhada/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// isoDate is what USER_ENTERED parses as a date regardless of locale.
const isoDate = "2006-01-02"

// Writer publishes customer ledgers to one spreadsheet, a tab per customer.
type Writer struct {
	service       *sheets.Service
	logger        *slog.Logger
	spreadsheetID string
	config        Config
	mu            sync.Mutex
}

var _ service.LedgerWriter = (*Writer)(nil)

// NewWriter creates a new Google Sheets ledger writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// WriteLedger replaces the customer's tab with the expanded ledger.
func (w *Writer) WriteLedger(ctx context.Context, customer string, lines []model.LedgerLine) error {
	w.logger.Info("writing ledger", "customer", customer, "lines", len(lines))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	title := TabTitle(customer)
	sheetID, err := w.ensureTab(ctx, spreadsheetID, title)
	if err != nil {
		return fmt.Errorf("failed to prepare tab %q: %w", title, err)
	}

	values := PrepareLedgerValues(lines)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		if clearErr := w.clearTab(ctx, spreadsheetID, title); clearErr != nil {
			return classifyAPIError(fmt.Errorf("failed to clear tab: %w", clearErr))
		}
		return classifyAPIError(w.writeData(ctx, spreadsheetID, title, values))
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classifyAPIError(w.applyFormatting(ctx, spreadsheetID, sheetID, len(values)))
		}, retryOpts)
		if err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("ledger written",
		"spreadsheet_id", spreadsheetID,
		"customer", customer,
		"rows_written", len(values))

	return nil
}

// TabTitle turns a customer name into a valid tab title.
func TabTitle(customer string) string {
	title := strings.TrimSpace(customer)
	for _, bad := range []string{"[", "]", "*", "?", "/", "\\", ":"} {
		title = strings.ReplaceAll(title, bad, "_")
	}
	if title == "" {
		return "ledger"
	}
	r := []rune(title)
	if len(r) > 100 {
		r = r[:100]
	}
	return string(r)
}

// A1Range quotes a tab title for A1 notation, optionally followed by a cell.
func A1Range(title, cell string) string {
	quoted := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if cell == "" {
		return quoted
	}
	return quoted + "!" + cell
}

// PrepareLedgerValues lays an expanded ledger out as sheet values, header
// first. Numbers stay numeric and dates are written as ISO text.
func PrepareLedgerValues(lines []model.LedgerLine) [][]any {
	var rows []model.TransactionRow
	for _, line := range lines {
		if line.Kind() == model.LineTransaction {
			rows = append(rows, *line.Row)
		}
	}
	extra := report.ExtraColumns(rows)

	header := report.Header(extra)
	values := make([][]any, 0, len(lines)+1)

	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	values = append(values, head)

	for _, cells := range report.Rows(lines, extra) {
		row := make([]any, len(cells))
		for i, c := range cells {
			if t, ok := c.(time.Time); ok {
				row[i] = t.Format(isoDate)
				continue
			}
			row[i] = report.Numeric(c)
		}
		values = append(values, row)
	}
	return values
}

// classifyAPIError marks an API failure for common.WithRetry. Rate limits and
// server errors are retried, other API errors are final, and transport
// failures that never reached the API are retried.
func classifyAPIError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return &common.RetryableError{Err: err, Retryable: true}
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet gets the configured spreadsheet or creates a new one.
// The resolved ID is reused for later ledgers.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.spreadsheetID != "" {
		return w.spreadsheetID, nil
	}

	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		w.spreadsheetID = w.config.SpreadsheetID
		return w.spreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	w.spreadsheetID = created.SpreadsheetId
	return w.spreadsheetID, nil
}

// ensureTab returns the sheet ID of the titled tab, adding it when missing.
func (w *Writer) ensureTab(ctx context.Context, spreadsheetID, title string) (int64, error) {
	ss, err := w.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return s.Properties.SheetId, nil
		}
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("no reply for added tab %q", title)
	}

	w.logger.Debug("added tab", "title", title)
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// clearTab clears all values from the tab.
func (w *Writer) clearTab(ctx context.Context, spreadsheetID, title string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, A1Range(title, ""), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeData writes the values to the tab.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, title string, values [][]any) error {
	// Write in batches to avoid API limits
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, A1Range(title, fmt.Sprintf("A%d", i+1)), valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()

		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting bolds and freezes the header and formats date and amount columns.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, totalRows int) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(len(report.Columns)),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(len(report.Columns)),
				},
			},
		},
	}

	for _, col := range []string{report.ColDateOut, report.ColDateIn, report.ColBalanceSince} {
		requests = append(requests, columnFormat(sheetID, col, totalRows, &sheets.NumberFormat{
			Type:    "DATE",
			Pattern: "dd/mm/yyyy",
		}))
	}
	requests = append(requests, columnFormat(sheetID, report.ColTotal, totalRows, &sheets.NumberFormat{
		Type:    "CURRENCY",
		Pattern: "₹#,##0.00",
	}))

	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).Context(ctx).Do()
	return err
}

func columnFormat(sheetID int64, column string, totalRows int, format *sheets.NumberFormat) *sheets.Request {
	idx := int64(columnIndex(column))
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    1,
				EndRowIndex:      int64(totalRows),
				StartColumnIndex: idx,
				EndColumnIndex:   idx + 1,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{NumberFormat: format},
			},
			Fields: "userEnteredFormat.numberFormat",
		},
	}
}

func columnIndex(column string) int {
	for i, c := range report.Columns {
		if c == column {
			return i
		}
	}
	return 0
}
