package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/idilsaglam/circles/internal/circles"
	"github.com/idilsaglam/circles/internal/model"
	"github.com/idilsaglam/circles/internal/ui"
)

const exportSheet = "Circles"

func (a *App) exportCmd() *cobra.Command {
	var out, name string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every circle to an .xlsx workbook",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = fmt.Sprintf("circles_%s.xlsx", time.Now().Format("20060102_150405"))
			}
			if !strings.HasSuffix(strings.ToLower(out), ".xlsx") {
				return usagef("export: --out must end in .xlsx, got %q", out)
			}
			ctrl, _, err := a.controller(a.console())
			if err != nil {
				return err
			}
			rows, err := fetchAll(cmd.Context(), ctrl, model.PageParams{Name: name})
			if err != nil {
				return err
			}
			if err := writeWorkbook(out, rows); err != nil {
				return err
			}
			a.log.Debug("exported circles", zap.String("file", out), zap.Int("rows", len(rows)))
			ui.OK(a.Out, fmt.Sprintf("exported %d circle(s) to %s", len(rows), out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "workbook path (default circles_<timestamp>.xlsx)")
	cmd.Flags().StringVar(&name, "name", "", "only export circles whose name matches")
	return cmd
}

// fetchAll walks every page of the filtered collection.
func fetchAll(ctx context.Context, ctrl *circles.Controller, p model.PageParams) ([]model.Circle, error) {
	p.PageSize = model.MaxPageSize
	var all []model.Circle
	for p.Current = 1; ; p.Current++ {
		page, err := ctrl.List(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("list page %d: %w", p.Current, err)
		}
		all = append(all, page.Data...)
		if len(page.Data) == 0 || len(all) >= page.Total {
			return all, nil
		}
	}
}

func writeWorkbook(path string, rows []model.Circle) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headers := []string{"ID"}
	for _, c := range circles.Columns {
		headers = append(headers, c.Title)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for r, c := range rows {
		values := append([]string{c.ID}, circles.Cells(c)...)
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", r+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
