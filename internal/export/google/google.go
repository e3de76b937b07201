// Package google appends statements to a Google spreadsheet. Rows are
// written with USER_ENTERED so dates and amounts land as real values,
// not strings.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	appconfig "conti/internal/config"
	"conti/internal/export"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

var _ export.StatementAppender = (*Client)(nil)

// Config carries everything needed to reach one spreadsheet. The OAuth
// client and the user token come from the conti-oauth-init flow; inline
// JSON and file paths are both accepted, JSON winning when both are set.
type Config struct {
	SpreadsheetID string
	SheetName     string
	ClientJSON    string
	ClientFile    string
	TokenJSON     string
	TokenFile     string
}

// New builds an authorized Sheets client. The token refreshes itself
// through the OAuth client when expired.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	clientJSON, err := readSource(cfg.ClientJSON, cfg.ClientFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client credentials: %w", err)
	}
	oauthCfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}

	tokenJSON, err := readSource(cfg.TokenJSON, cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	sheetBase := strings.TrimSpace(cfg.SheetName)
	if sheetBase == "" {
		sheetBase = "Transactions"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

// FromAppConfig maps the application config to a client, or returns
// (nil, nil) when no spreadsheet is configured.
func FromAppConfig(ctx context.Context, cfg *appconfig.Config) (*Client, error) {
	if strings.TrimSpace(cfg.GoogleSpreadsheetID) == "" {
		return nil, nil
	}
	return New(ctx, Config{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		SheetName:     cfg.GoogleSheetName,
		ClientJSON:    cfg.GoogleOAuthClientJSON,
		ClientFile:    cfg.GoogleOAuthClientFile,
		TokenJSON:     cfg.GoogleOAuthTokenJSON,
		TokenFile:     cfg.GoogleOAuthTokenFile,
	})
}

// AppendStatement writes the statement below the sheet's last used row.
// The header row is written only when the sheet is still empty. Returns
// the written range, or "" for an empty statement.
func (c *Client) AppendStatement(ctx context.Context, s export.Statement) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := c.sheetName(s.Year)

	// The used-row count of column A tells us where to start writing.
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rng, err)
	}
	startRow := len(resp.Values) + 1

	var values [][]any
	if startRow == 1 {
		values = append(values, toCells(export.StatementColumns))
	}
	for _, t := range s.Transactions {
		values = append(values, toCells(export.StatementRow(t)))
	}
	if len(values) == 0 {
		return "", nil
	}

	endRow := startRow + len(values) - 1
	writeRange := fmt.Sprintf("%s!A%d:I%d", sheet, startRow, endRow)
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", writeRange, err)
	}
	return writeRange, nil
}

// sheetName prefixes the statement year unless the configured name
// already starts with one, so each year lands on its own sheet.
func (c *Client) sheetName(year int) string {
	if year == 0 {
		year = time.Now().Year()
	}
	base := c.sheetBase
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

func toCells(row []string) []any {
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// readSource resolves inline-JSON-or-file credential pairs.
func readSource(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return b, nil
	default:
		return nil, errors.New("neither inline JSON nor a file path is set")
	}
}
