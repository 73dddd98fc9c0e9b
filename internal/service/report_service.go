package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/repository"
)

var ErrExportFailed = errors.New("failed to build the export workbook")

// ReportService 1099 reporting.
type ReportService interface {
	Report1099(ctx context.Context, year int) (*dto.Report1099Response, error)
	// Export1099 an .xlsx workbook with a rollup sheet and a per-kind sheet.
	Export1099(ctx context.Context, year int) (*bytes.Buffer, string, error)
}

type reportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService creates a ReportService.
func NewReportService(repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) Report1099(ctx context.Context, year int) (*dto.Report1099Response, error) {
	rollup, err := s.repo.Report.ListRollup(ctx, year)
	if err != nil {
		return nil, err
	}
	details, err := s.repo.Report.ListPayeeTotals(ctx, year)
	if err != nil {
		return nil, err
	}
	if rollup == nil {
		rollup = []model.Rollup1099{}
	}
	if details == nil {
		details = []model.PayeeTotal1099{}
	}
	return &dto.Report1099Response{Year: year, Rollup: rollup, Details: details}, nil
}

// ────────────────────── Export ──────────────────────

const (
	sheetRollup  = "1099 Rollup"
	sheetDetails = "By Kind"
)

func (s *reportService) Export1099(ctx context.Context, year int) (*bytes.Buffer, string, error) {
	rep, err := s.Report1099(ctx, year)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetRollup)
	if err != nil {
		return nil, "", ErrExportFailed
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	if _, err := f.NewSheet(sheetDetails); err != nil {
		return nil, "", ErrExportFailed
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	moneyFmt := "$#,##0.00"
	moneyStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})

	writeHeader(f, sheetRollup, headerStyle,
		"Payee", "Email", "Address", "Tax Year", "Payments", "Gross", "Fee Withheld", "Net", "Over $600")
	for i, r := range rep.Rollup {
		row := i + 2
		f.SetCellValue(sheetRollup, cell("A", row), model.FirstNonEmpty(model.StrVal(r.DisplayName), r.PayeeKey))
		f.SetCellValue(sheetRollup, cell("B", row), model.StrVal(r.Email))
		f.SetCellValue(sheetRollup, cell("C", row), model.StrVal(r.Address))
		f.SetCellValue(sheetRollup, cell("D", row), r.TaxYear)
		f.SetCellValue(sheetRollup, cell("E", row), r.PaymentCount)
		f.SetCellValue(sheetRollup, cell("F", row), r.TotalAmount.InexactFloat64())
		f.SetCellValue(sheetRollup, cell("G", row), r.TotalFeeWithheld.InexactFloat64())
		f.SetCellValue(sheetRollup, cell("H", row), r.TotalNet.InexactFloat64())
		f.SetCellValue(sheetRollup, cell("I", row), yesNo(r.OverThreshold))
	}
	if n := len(rep.Rollup); n > 0 {
		f.SetCellStyle(sheetRollup, "F2", cell("H", n+1), moneyStyle)
	}
	f.SetColWidth(sheetRollup, "A", "C", 28)
	f.SetColWidth(sheetRollup, "D", "I", 14)

	writeHeader(f, sheetDetails, headerStyle,
		"Payee", "Kind", "Tax Year", "Payments", "Gross", "Fee Withheld", "Net")
	for i, d := range rep.Details {
		row := i + 2
		f.SetCellValue(sheetDetails, cell("A", row), model.FirstNonEmpty(model.StrVal(d.PayeeName), d.PayeeKey))
		f.SetCellValue(sheetDetails, cell("B", row), d.Kind)
		f.SetCellValue(sheetDetails, cell("C", row), d.TaxYear)
		f.SetCellValue(sheetDetails, cell("D", row), d.PaymentCount)
		f.SetCellValue(sheetDetails, cell("E", row), d.TotalAmount.InexactFloat64())
		f.SetCellValue(sheetDetails, cell("F", row), d.TotalFeeWithheld.InexactFloat64())
		f.SetCellValue(sheetDetails, cell("G", row), d.TotalNet.InexactFloat64())
	}
	if n := len(rep.Details); n > 0 {
		f.SetCellStyle(sheetDetails, "E2", cell("G", n+1), moneyStyle)
	}
	f.SetColWidth(sheetDetails, "A", "A", 28)
	f.SetColWidth(sheetDetails, "B", "G", 14)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write 1099 workbook failed", zap.Int("year", year), zap.Error(err))
		return nil, "", ErrExportFailed
	}
	return buf, fmt.Sprintf("prs_1099_%d.xlsx", year), nil
}

// ── helpers ──

func writeHeader(f *excelize.File, sheet string, style int, titles ...string) {
	for i, t := range titles {
		f.SetCellValue(sheet, cell(colName(i), 1), t)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(titles)-1), 1), style)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
