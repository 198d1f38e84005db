package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ── export errors ──

var (
	ErrExportGenerateFail = errors.New("failed to generate the Excel file")
	ErrStorageDisabled    = pkgerrors.Precondition("storage_disabled", "report archival is not configured")
)

// ReportStore keeps generated files and hands out temporary download links.
type ReportStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	URL(ctx context.Context, name string, ttl time.Duration) (string, error)
}

// ExportService renders log sheets as Excel workbooks.
type ExportService interface {
	// ExportLogSheet returns the workbook and a suggested file name.
	ExportLogSheet(ctx context.Context, logSheetID string) (*bytes.Buffer, string, error)
	// ArchiveLogSheet stores the workbook and returns a presigned link to it.
	ArchiveLogSheet(ctx context.Context, logSheetID string) (*dto.ArchiveResponse, error)
}

type exportService struct {
	repo    *repository.Repository
	store   ReportStore
	linkTTL time.Duration
	opts    Options
	logger  *zap.Logger
}

// NewExportService store may be nil, in which case archival is refused.
func NewExportService(repo *repository.Repository, store ReportStore, linkTTL time.Duration, opts Options, logger *zap.Logger) ExportService {
	if linkTTL <= 0 {
		linkTTL = time.Hour
	}
	return &exportService{repo: repo, store: store, linkTTL: linkTTL, opts: opts, logger: logger}
}

// ────────────────────── ExportLogSheet ──────────────────────
//
// Layout:
//   - title row with sheet number, unit and supplier
//   - one row per daily entry in date order
//   - a totals row

func (s *exportService) ExportLogSheet(ctx context.Context, logSheetID string) (*bytes.Buffer, string, error) {
	sheet, err := s.repo.LogSheet.GetByID(ctx, logSheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrLogSheetNotFound
		}
		s.logger.Error("get log sheet for export failed", zap.String("id", logSheetID), zap.Error(err))
		return nil, "", err
	}
	entries, err := s.repo.DailyEntry.ListBySheet(ctx, logSheetID)
	if err != nil {
		s.logger.Error("list entries for export failed", zap.String("id", logSheetID), zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	name := "Log sheet"
	idx, err := f.NewSheet(name)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Date", "Day", "Meter start", "Meter end", "Work h", "Breakdown h", "Idle h", "Fuel (L)", "Amount", "Notes"}
	widths := []float64{12, 12, 12, 12, 10, 12, 10, 10, 14, 30}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(name, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(name, "A1", sheetTitle(sheet))
	f.MergeCell(name, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(name, "A1", "A1", headerStyle)

	row := 2
	for i, h := range headers {
		f.SetCellValue(name, cell(colName(i), row), h)
	}
	f.SetCellStyle(name, cell("A", row), cell(colName(len(headers)-1), row), headerStyle)

	row = 3
	for _, e := range entries {
		f.SetCellValue(name, cell("A", row), formatDate(e.EntryDate))
		f.SetCellValue(name, cell("B", row), e.Weekday)
		if e.MeterStart != nil {
			f.SetCellValue(name, cell("C", row), *e.MeterStart)
		}
		if e.MeterEnd != nil {
			f.SetCellValue(name, cell("D", row), *e.MeterEnd)
		}
		f.SetCellValue(name, cell("E", row), e.WorkHours.InexactFloat64())
		f.SetCellValue(name, cell("F", row), e.BreakdownHours.InexactFloat64())
		f.SetCellValue(name, cell("G", row), e.IdleHours.InexactFloat64())
		f.SetCellValue(name, cell("H", row), e.FuelLiters.InexactFloat64())
		f.SetCellValue(name, cell("I", row), formatMoney(e.Amount))
		f.SetCellValue(name, cell("J", row), e.Notes)
		row++
	}

	f.SetCellValue(name, cell("A", row), "Total")
	f.SetCellValue(name, cell("I", row), formatMoney(sheet.TotalAmount))
	f.SetCellStyle(name, cell("A", row), cell(colName(len(headers)-1), row), headerStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.String("id", logSheetID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("log_sheet_%s.xlsx", sheet.SheetNumber), nil
}

// ────────────────────── ArchiveLogSheet ──────────────────────

func (s *exportService) ArchiveLogSheet(ctx context.Context, logSheetID string) (*dto.ArchiveResponse, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	buf, filename, err := s.ExportLogSheet(ctx, logSheetID)
	if err != nil {
		return nil, err
	}

	now := s.opts.Clock.Now()
	object := fmt.Sprintf("log-sheets/%s/%d_%s", logSheetID, now.Unix(), filename)
	if err := s.store.Put(ctx, object, buf.Bytes(), xlsxContentType); err != nil {
		s.logger.Error("archive upload failed", zap.String("object", object), zap.Error(err))
		return nil, err
	}

	url, err := s.store.URL(ctx, object, s.linkTTL)
	if err != nil {
		s.logger.Error("presign archive failed", zap.String("object", object), zap.Error(err))
		return nil, err
	}

	s.logger.Info("log sheet archived", zap.String("log_sheet_id", logSheetID), zap.String("object", object))
	return &dto.ArchiveResponse{
		ObjectName: object,
		URL:        url,
		ExpiresAt:  formatTimestamp(now.Add(s.linkTTL)),
	}, nil
}

// ── helpers ──

func sheetTitle(sheet *model.DailyLogSheet) string {
	title := fmt.Sprintf("Log sheet %s (%s to %s)", sheet.SheetNumber, formatDate(sheet.PeriodStart), formatDate(sheet.PeriodEnd))
	if e := sheet.Engagement; e != nil {
		title += " " + e.Number
		if a := e.Assignment; a != nil {
			title += " unit " + a.UnitID
			if a.Supplier != nil {
				title += ", " + a.Supplier.Name
			}
		}
	}
	return title
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
