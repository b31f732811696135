package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/extrame/xls"
	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Parser turns a validated blob into an ordered sequence of loosely-typed
// rows keyed by the header text exactly as written in the source. It is a
// pure transformation: no persistence, fully replayable from the same blob.
type Parser struct {
	log *slog.Logger
}

func NewParser(log *slog.Logger) *Parser {
	return &Parser{log: log}
}

// Parse dispatches on the resolved format and enforces the required-column
// check before any row normalization happens. Zero data rows fail with
// EmptyFile regardless of header correctness.
func (p *Parser) Parse(upload *domain.ValidatedUpload) ([]domain.ParsedRow, error) {
	var (
		header []string
		rows   []domain.ParsedRow
		err    error
	)

	switch upload.Format {
	case domain.FormatCSV:
		header, rows, err = p.parseCSV(upload.Content)
	case domain.FormatXLS:
		header, rows, err = p.parseXLS(upload.Content)
	case domain.FormatXLSX:
		header, rows, err = p.parseXLSX(upload.Content)
	default:
		// Unreachable when the ingestion gate ran.
		return nil, domain.NewErrorf(domain.CodeUnsupportedFormat, "unsupported format %q", upload.Format)
	}
	if err != nil {
		return nil, err
	}

	if missing := missingRequiredColumns(header); len(missing) > 0 {
		return nil, domain.NewMissingColumnsError(missing, header)
	}

	if len(rows) == 0 {
		return nil, domain.NewError(domain.CodeEmptyFile, "file contains no data rows")
	}

	p.log.Debug("parsed upload",
		slog.String("filename", upload.SanitizedName),
		slog.Int("row_count", len(rows)),
	)

	return rows, nil
}

func (p *Parser) parseCSV(content []byte) ([]string, []domain.ParsedRow, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, domain.NewError(domain.CodeEmptyFile, "file contains no data rows")
	}
	if err != nil {
		return nil, nil, domain.WrapError(domain.CodeMalformedFile, "failed to read CSV header", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var rows []domain.ParsedRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, domain.WrapError(domain.CodeMalformedFile, "failed to read CSV row", err)
		}

		rows = append(rows, rowFromRecord(header, record))
	}

	return header, rows, nil
}

func (p *Parser) parseXLSX(content []byte) ([]string, []domain.ParsedRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, domain.WrapError(domain.CodeMalformedFile, "failed to open XLSX container", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, domain.NewError(domain.CodeNoWorksheets, "spreadsheet contains no worksheets")
	}

	// Only the first worksheet is ever read.
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, domain.WrapError(domain.CodeMalformedFile, "failed to read worksheet", err)
	}

	return recordsToRows(records)
}

func (p *Parser) parseXLS(content []byte) ([]string, []domain.ParsedRow, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, nil, domain.WrapError(domain.CodeMalformedFile, "failed to open XLS container", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil, domain.NewError(domain.CodeNoWorksheets, "spreadsheet contains no worksheets")
	}

	var records [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}

		var record []string
		for j := 0; j <= row.LastCol(); j++ {
			record = append(record, row.Col(j))
		}
		records = append(records, record)
	}

	return recordsToRows(records)
}

func recordsToRows(records [][]string) ([]string, []domain.ParsedRow, error) {
	if len(records) == 0 {
		return nil, nil, domain.NewError(domain.CodeEmptyWorksheet, "worksheet contains no rows")
	}

	header := records[0]

	var rows []domain.ParsedRow
	for _, record := range records[1:] {
		if emptyRecord(record) {
			continue
		}
		rows = append(rows, rowFromRecord(header, record))
	}

	return header, rows, nil
}

func rowFromRecord(header, record []string) domain.ParsedRow {
	row := make(domain.ParsedRow, len(header))
	for i, name := range header {
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}

	return row
}

func emptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
