package auditlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	objstore "github.com/maosdefada/cakeshop-backend/pkg/storage"
	"github.com/tealeg/xlsx"
)

const (
	DefaultSheetName = "Pedidos"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Uploader object storage the workbook is copied to after each append
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*objstore.UploadResult, error)
}

// WorkbookSink appends rows to a local .xlsx file
type WorkbookSink struct {
	mu        sync.Mutex
	path      string
	sheetName string
	uploader  Uploader
	keyPrefix string
	now       func() time.Time
}

// WorkbookOption configures a WorkbookSink
type WorkbookOption func(*WorkbookSink)

// WithUploader copies the workbook to object storage under prefix/yyyy/mm/
func WithUploader(u Uploader, prefix string) WorkbookOption {
	return func(s *WorkbookSink) {
		s.uploader = u
		s.keyPrefix = prefix
	}
}

// WithSheetName overrides the worksheet name
func WithSheetName(name string) WorkbookOption {
	return func(s *WorkbookSink) {
		if name != "" {
			s.sheetName = name
		}
	}
}

// NewWorkbookSink sink writing to path, created on first append
func NewWorkbookSink(path string, opts ...WorkbookOption) *WorkbookSink {
	s := &WorkbookSink{path: path, sheetName: DefaultSheetName, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WorkbookSink) Name() string { return "workbook" }

func (s *WorkbookSink) Append(ctx context.Context, rec Record) error {
	rows := Rows(rec)
	if len(rows) == 0 {
		return ErrEmptyRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, sheet, err := s.open()
	if err != nil {
		return &AuditLogError{OrderID: rec.Order.ID, Sink: s.Name(), Err: err}
	}

	for _, r := range rows {
		xr := sheet.AddRow()
		for _, v := range r.Values() {
			xr.AddCell().SetValue(v)
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return &AuditLogError{OrderID: rec.Order.ID, Sink: s.Name(), Err: err}
	}
	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return &AuditLogError{OrderID: rec.Order.ID, Sink: s.Name(), Err: err}
	}

	if s.uploader != nil {
		key := objstore.MonthlyKey(s.keyPrefix, filepath.Base(s.path), s.now())
		if _, err := s.uploader.Upload(ctx, key, bytes.NewReader(buf.Bytes()), xlsxContentType, int64(buf.Len())); err != nil {
			return &AuditLogError{OrderID: rec.Order.ID, Sink: s.Name() + "-upload", Err: err}
		}
	}
	return nil
}

// open loads the workbook, creating it with a header row when missing
func (s *WorkbookSink) open() (*xlsx.File, *xlsx.Sheet, error) {
	var file *xlsx.File
	if _, err := os.Stat(s.path); err == nil {
		file, err = xlsx.OpenFile(s.path)
		if err != nil {
			return nil, nil, fmt.Errorf("open workbook: %w", err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		file = xlsx.NewFile()
	} else {
		return nil, nil, err
	}

	if sheet, ok := file.Sheet[s.sheetName]; ok {
		return file, sheet, nil
	}

	sheet, err := file.AddSheet(s.sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("add sheet: %w", err)
	}
	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetValue(h)
	}
	return file, sheet, nil
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
