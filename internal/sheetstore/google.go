package sheetstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleStore implements Store against the Google Sheets v4 API.
type GoogleStore struct {
	svc *sheets.Service
}

var _ Store = (*GoogleStore)(nil)

// NewGoogleStore builds a GoogleStore from a service-account credentials file.
func NewGoogleStore(ctx context.Context, credentialsFile string) (*GoogleStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return &GoogleStore{svc: svc}, nil
}

func tabRange(tab, rng string) string {
	quoted := "'" + strings.ReplaceAll(tab, "'", "''") + "'"
	if rng == "" {
		return quoted
	}
	return quoted + "!" + rng
}

// ReadRows reads tab rows in the requested render mode.
func (g *GoogleStore) ReadRows(ctx context.Context, spreadsheetID, tab, rng string, mode RenderMode) ([][]any, error) {
	render := "UNFORMATTED_VALUE"
	if mode == RenderFormatted {
		render = "FORMATTED_VALUE"
	}
	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, tabRange(tab, rng)).
		ValueRenderOption(render).
		Context(ctx).Do()
	if err != nil {
		if isBadRange(err) {
			return nil, fmt.Errorf("reading %s: %w", tab, ErrTabNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", tab, err)
	}
	rows := make([][]any, len(resp.Values))
	for i, r := range resp.Values {
		rows[i] = r
	}
	return rows, nil
}

// AppendRow appends one row to tab.
func (g *GoogleStore) AppendRow(ctx context.Context, spreadsheetID, tab string, row []any) error {
	vr := &sheets.ValueRange{Values: [][]any{row}}
	_, err := g.svc.Spreadsheets.Values.Append(spreadsheetID, tabRange(tab, ""), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		if isBadRange(err) {
			return fmt.Errorf("appending to %s: %w", tab, ErrTabNotFound)
		}
		return fmt.Errorf("appending to %s: %w", tab, err)
	}
	return nil
}

// UpdateRow overwrites one row starting at column A.
func (g *GoogleStore) UpdateRow(ctx context.Context, spreadsheetID, tab string, rowPos int, row []any) error {
	vr := &sheets.ValueRange{Values: [][]any{row}}
	_, err := g.svc.Spreadsheets.Values.Update(spreadsheetID, tabRange(tab, fmt.Sprintf("A%d", rowPos)), vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		if isBadRange(err) {
			return fmt.Errorf("updating %s row %d: %w", tab, rowPos, ErrTabNotFound)
		}
		return fmt.Errorf("updating %s row %d: %w", tab, rowPos, err)
	}
	return nil
}

// DeleteRow removes one physical row via a DeleteDimension batch update.
// Row addressing by value is impossible against the API, so callers resolve
// the position first with FindRowPosition.
func (g *GoogleStore) DeleteRow(ctx context.Context, spreadsheetID, tab string, rowPos int) error {
	sheetID, err := g.sheetID(ctx, spreadsheetID, tab)
	if err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowPos - 1),
					EndIndex:   int64(rowPos),
				},
			},
		}},
	}
	if _, err := g.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting %s row %d: %w", tab, rowPos, err)
	}
	return nil
}

// ListTabs returns the workbook's tab names.
func (g *GoogleStore) ListTabs(ctx context.Context, spreadsheetID string) ([]string, error) {
	meta, err := g.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}
	names := make([]string, 0, len(meta.Sheets))
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			names = append(names, s.Properties.Title)
		}
	}
	return names, nil
}

// CreateTab adds a tab, tolerating a concurrent create of the same name.
func (g *GoogleStore) CreateTab(ctx context.Context, spreadsheetID, tab string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		}},
	}
	_, err := g.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 400 && strings.Contains(gerr.Message, "already exists") {
			return nil
		}
		return fmt.Errorf("creating tab %s: %w", tab, err)
	}
	return nil
}

func (g *GoogleStore) sheetID(ctx context.Context, spreadsheetID, tab string) (int64, error) {
	meta, err := g.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("resolving tab %s: %w", tab, err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("resolving tab %s: %w", tab, ErrTabNotFound)
}

func isBadRange(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == 400 && strings.Contains(gerr.Message, "Unable to parse range")
}
