package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rzyfront/vendix-core/internal/domain"
)

// domainExportHeader is the column order of the domains export sheet.
var domainExportHeader = []string{
	"Hostname",
	"Organization ID",
	"Store ID",
	"Type",
	"Ownership",
	"Status",
	"SSL Status",
	"Primary",
	"Last Verified",
	"Created",
}

// ExportDomainsXLSX renders the caller's domains as an XLSX workbook. Super
// admins export platform-wide; everyone else gets their organization.
func (s *DomainService) ExportDomainsXLSX(ctx context.Context, f domain.DomainFilter, platformWide bool) ([]byte, error) {
	ctx, span := domainTracer.Start(ctx, "DomainService.ExportDomainsXLSX")
	defer span.End()

	var recs []domain.DomainRecord
	var err error
	if platformWide {
		recs, err = s.store.WithoutScope().ListAllDomains(ctx, f)
	} else {
		recs, _, err = s.store.ListDomains(ctx, f, 1, 0)
	}
	if err != nil {
		return nil, err
	}

	return renderDomainsSheet(recs)
}

func renderDomainsSheet(recs []domain.DomainRecord) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := "Domains"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range domainExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header style: %w", err)
		}
	}

	for i, rec := range recs {
		row := i + 2
		values := []any{
			rec.Hostname,
			int64Value(rec.OrganizationID),
			int64Value(rec.StoreID),
			string(rec.DomainType),
			string(rec.Ownership),
			string(rec.Status),
			string(rec.SSLStatus),
			rec.IsPrimary,
			timeValue(rec.LastVerifiedAt),
			rec.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func int64Value(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}

func timeValue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
