package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"document-qa/internal/models"
)

// extractXLSX captures each sheet as a row-major table grid plus tab-joined
// text so spreadsheet content is both retrievable and citable.
func (e *Extractor) extractXLSX(data []byte) *models.ExtractedDocument {
	doc := &models.ExtractedDocument{Metadata: map[string]string{}}

	f, err := xlsx.OpenBinary(data)
	if err != nil {
		log.Warn().Err(err).Msg("xlsx open failed, trying excelize reader")
		return e.extractODS(data)
	}

	var b strings.Builder
	for sheetNum, sheet := range f.Sheets {
		b.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		var grid [][]string
		for _, row := range sheet.Rows {
			var cells []string
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			grid = append(grid, cells)
			b.WriteString(strings.Join(cells, "\t"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if len(grid) > 0 {
			doc.Tables = append(doc.Tables, models.TableResult{Page: sheetNum + 1, Data: grid})
		}
	}

	doc.Text = cleanText(b.String())
	return doc
}

// extractODS reads OpenDocument and other excelize-supported spreadsheets.
func (e *Extractor) extractODS(data []byte) *models.ExtractedDocument {
	doc := &models.ExtractedDocument{Metadata: map[string]string{}}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Msg("spreadsheet open failed, decoding raw bytes")
		doc.Text = cleanText(decodeLenient(data))
		return doc
	}
	defer f.Close()

	var b strings.Builder
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		b.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		var grid [][]string
		for _, row := range rows {
			grid = append(grid, row)
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if len(grid) > 0 {
			doc.Tables = append(doc.Tables, models.TableResult{Page: sheetNum + 1, Data: grid})
		}
	}

	doc.Text = cleanText(b.String())
	return doc
}
