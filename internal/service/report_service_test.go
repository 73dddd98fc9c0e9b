package service

import (
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/model"
)

func TestReportService_Report1099_EmptyYear(t *testing.T) {
	repo, _ := newTestRepo()
	svc := NewReportService(repo, zap.NewNop())

	rep, err := svc.Report1099(context.Background(), 2031)
	if err != nil {
		t.Fatalf("Report1099 should succeed: %v", err)
	}
	if rep.Rollup == nil || rep.Details == nil || len(rep.Rollup) != 0 {
		t.Errorf("empty years should return empty lists, got %+v", rep)
	}
}

func TestReportService_Export1099_Workbook(t *testing.T) {
	repo, db := newTestRepo()
	db.rollup = []model.Rollup1099{
		{PayeeKey: "mus-1", DisplayName: model.StrPtr("Ann Lee"), TaxYear: 2031, TotalAmount: *dec(1200), TotalFeeWithheld: *dec(100), TotalNet: *dec(1100), PaymentCount: 3, OverThreshold: true},
		{PayeeKey: "name:sam", TaxYear: 2030, TotalAmount: *dec(50)},
	}
	db.payees = []model.PayeeTotal1099{
		{PayeeKey: "mus-1", PayeeName: model.StrPtr("Ann Lee"), Kind: model.PaymentMusician, TaxYear: 2031, TotalAmount: *dec(1200), TotalNet: *dec(1100), PaymentCount: 3},
	}
	svc := NewReportService(repo, zap.NewNop())

	buf, name, err := svc.Export1099(context.Background(), 2031)
	if err != nil {
		t.Fatalf("Export1099 should succeed: %v", err)
	}
	if name != "prs_1099_2031.xlsx" {
		t.Errorf("filename = %s", name)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("workbook should open: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "1099 Rollup" || sheets[1] != "By Kind" {
		t.Errorf("sheets = %v", sheets)
	}
	rows, err := f.GetRows("1099 Rollup")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("want header plus one row for the year, got %d", len(rows))
	}
	if rows[0][0] != "Payee" || rows[1][0] != "Ann Lee" || rows[1][8] != "Yes" {
		t.Errorf("rollup rows = %v", rows)
	}
	if v, _ := f.GetCellValue("By Kind", "B2"); v != model.PaymentMusician {
		t.Errorf("kind cell = %q", v)
	}
}
