package auditlog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const sheetsRange = "A1"

var ErrSheetsNotConfigured = errors.New("google sheets credentials not configured")

// SheetsConfig service-account credentials and target spreadsheet
type SheetsConfig struct {
	ServiceAccountEmail string        `yaml:"service_account_email"`
	PrivateKey          string        `yaml:"-"`
	SpreadsheetID       string        `yaml:"spreadsheet_id"`
	BaseURL             string        `yaml:"base_url"`
	TokenURL            string        `yaml:"-"`
	Timeout             time.Duration `yaml:"timeout"`
}

// SheetsConfigFromEnv reads the GOOGLE_* variables
func SheetsConfigFromEnv() SheetsConfig {
	return SheetsConfig{
		ServiceAccountEmail: os.Getenv("GOOGLE_SERVICE_ACCOUNT_EMAIL"),
		PrivateKey:          os.Getenv("GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY"),
		SpreadsheetID:       os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
	}
}

// Enabled reports whether every credential is present
func (c SheetsConfig) Enabled() bool {
	return c.ServiceAccountEmail != "" && c.PrivateKey != "" && c.SpreadsheetID != ""
}

// SheetsSink appends rows through the Sheets v4 values.append call
type SheetsSink struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheetsSink authenticates with a service-account JWT
func NewSheetsSink(ctx context.Context, cfg SheetsConfig) (*SheetsSink, error) {
	if !cfg.Enabled() {
		return nil, ErrSheetsNotConfigured
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}

	conf := &jwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(UnescapePrivateKey(cfg.PrivateKey)),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   tokenURL,
	}

	client := conf.Client(ctx)
	client.Timeout = cfg.Timeout
	if client.Timeout == 0 {
		client.Timeout = 10 * time.Second
	}

	return NewSheetsSinkWithClient(ctx, client, cfg.SpreadsheetID, cfg.BaseURL)
}

// NewSheetsSinkWithClient sink over an already authorized client. An empty
// baseURL targets the public Sheets endpoint.
func NewSheetsSinkWithClient(ctx context.Context, client *http.Client, spreadsheetID, baseURL string) (*SheetsSink, error) {
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if baseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(baseURL, "/")+"/"))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetsSink{service: svc, spreadsheetID: spreadsheetID}, nil
}

// UnescapePrivateKey env files often carry the PEM with literal \n
func UnescapePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Append(ctx context.Context, rec Record) error {
	rows := Rows(rec)
	if len(rows) == 0 {
		return ErrEmptyRecord
	}

	values := &sheets.ValueRange{Values: make([][]interface{}, 0, len(rows))}
	for _, r := range rows {
		values.Values = append(values.Values, r.Values())
	}

	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, sheetsRange, values).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return &AuditLogError{OrderID: rec.Order.ID, Sink: s.Name(), Err: fmt.Errorf("sheets append: %w", err)}
	}
	return nil
}
