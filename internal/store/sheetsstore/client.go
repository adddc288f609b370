package sheetsstore

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// client is the subset of the Sheets and Drive APIs the store uses.
type client interface {
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	AppendRows(ctx context.Context, spreadsheetID, sheet string, rows [][]any) error
	GetRows(ctx context.Context, spreadsheetID, sheet string) ([][]any, error)
	AddSheets(ctx context.Context, spreadsheetID string, titles []string) error
	Create(ctx context.Context, title string, sheetTitles []string) (string, error)
	Share(ctx context.Context, spreadsheetID, email string) error
}

type apiClient struct {
	sheets *sheets.Service
	drive  *drive.Service
}

func newAPIClient(ctx context.Context, credentialsFile string) (*apiClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	ss, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	ds, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive client: %w", err)
	}
	return &apiClient{sheets: ss, drive: ds}, nil
}

func (c *apiClient) SheetTitles(ctx context.Context, id string) ([]string, error) {
	ss, err := c.sheets.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

func (c *apiClient) AppendRows(ctx context.Context, id, sheet string, rows [][]any) error {
	vr := &sheets.ValueRange{Values: rows}
	_, err := c.sheets.Spreadsheets.Values.Append(id, sheet+"!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (c *apiClient) GetRows(ctx context.Context, id, sheet string) ([][]any, error) {
	vr, err := c.sheets.Spreadsheets.Values.Get(id, sheet).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return vr.Values, nil
}

func (c *apiClient) AddSheets(ctx context.Context, id string, titles []string) error {
	if len(titles) == 0 {
		return nil
	}
	reqs := make([]*sheets.Request, 0, len(titles))
	for _, t := range titles {
		reqs = append(reqs, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: t}},
		})
	}
	_, err := c.sheets.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).
		Do()
	return err
}

func (c *apiClient) Create(ctx context.Context, title string, sheetTitles []string) (string, error) {
	ss := &sheets.Spreadsheet{Properties: &sheets.SpreadsheetProperties{Title: title}}
	for _, t := range sheetTitles {
		ss.Sheets = append(ss.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: t}})
	}
	created, err := c.sheets.Spreadsheets.Create(ss).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.SpreadsheetId, nil
}

func (c *apiClient) Share(ctx context.Context, id, email string) error {
	perm := &drive.Permission{Type: "user", Role: "writer", EmailAddress: email}
	_, err := c.drive.Permissions.Create(id, perm).Context(ctx).Do()
	return err
}
