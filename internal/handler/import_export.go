package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"cred-entry/internal/ledger"
	"cred-entry/internal/models"
	"cred-entry/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ImportExportHandler struct {
	Store  *ledger.Store
	Logger *zap.Logger
}

func NewImportExportHandler(store *ledger.Store, logger *zap.Logger) *ImportExportHandler {
	return &ImportExportHandler{
		Store:  store,
		Logger: logger,
	}
}

// exportName 导出文件名沿用账本文件名
func exportName(ledgerPath, ext string) string {
	base := strings.TrimSuffix(filepath.Base(ledgerPath), filepath.Ext(ledgerPath))
	if base == "" || base == "." {
		base = "entries"
	}
	return base + ext
}

// loadForExport 读取当前账本；文件损坏时返回错误响应
func (h *ImportExportHandler) loadForExport(c *gin.Context) (models.Table, string, bool) {
	s, ok := currentSession(c)
	if !ok {
		return models.Table{}, "", false
	}
	table, err := h.Store.LoadAll(c.Request.Context(), s)
	if err != nil {
		h.Logger.Warn("export: ledger unreadable", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, err.Error())
		return models.Table{}, "", false
	}
	return table, h.Store.Path(s), true
}

// ExportCSV 导出当前账本为 CSV
func (h *ImportExportHandler) ExportCSV(c *gin.Context) {
	table, path, ok := h.loadForExport(c)
	if !ok {
		return
	}

	// 设置响应头
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportName(path, ".csv")))

	// UTF-8 BOM（让 Excel 正确识别编码）
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(table.Header)
	for _, r := range table.Records {
		writer.Write(r.Values())
	}
}

// ExportXLSX 导出当前账本为 XLSX（重新生成，带列宽和金额格式）
func (h *ImportExportHandler) ExportXLSX(c *gin.Context) {
	table, path, ok := h.loadForExport(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Entries"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}

	// 设置表头
	for i, name := range table.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, name)
	}

	creditStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create style")
		return
	}

	// 写入数据，金额尽量保持数字类型
	for idx, r := range table.Records {
		row := idx + 2
		if n, err := strconv.ParseInt(r.ID, 10, 64); err == nil {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), n)
		} else {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Timestamp)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Cashier)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Bank)

		creditCell := fmt.Sprintf("E%d", row)
		if d, err := decimal.NewFromString(r.Credit); err == nil {
			v, _ := d.Float64()
			f.SetCellFloat(sheetName, creditCell, v, 2, 64)
			f.SetCellStyle(sheetName, creditCell, creditCell, creditStyle)
		} else {
			f.SetCellValue(sheetName, creditCell, r.Credit)
		}
	}

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "C", 14)
	f.SetColWidth(sheetName, "D", "D", 20)
	f.SetColWidth(sheetName, "E", "E", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportName(path, ".xlsx")))

	if err := f.Write(c.Writer); err != nil {
		h.Logger.Error("export xlsx", zap.Error(err))
	}
}
