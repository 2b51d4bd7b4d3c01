package core

// normalize.go turns CSV text into canonical order records.
//
// Parsing is pure: ParseOrders reads the header, Records walks the data rows
// once. Nothing is kept between calls, so re-reading a file means calling
// ParseOrders again.

import (
	"encoding/csv"
	"fmt"
	"iter"
	"log/slog"
	"strings"
)

// RowError describes a data row that was rejected.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// OrderCSV is a parsed header plus the unread data rows of an order file.
type OrderCSV struct {
	Mapping   HeaderMapping
	Delimiter rune

	body       string
	headerLine int
}

// ParseOrders locates the header row, detects the delimiter and resolves
// the canonical columns. A *MissingHeadersError is returned before any data
// row is read.
func ParseOrders(text string) (*OrderCSV, error) {
	rest := text
	line := 0
	for rest != "" {
		var current string
		current, rest, _ = strings.Cut(rest, "\n")
		line++
		current = strings.TrimRight(current, "\r")
		if strings.TrimSpace(current) == "" {
			continue
		}

		delim := DetectDelimiter(current)
		headers, err := newCSVReader(current, delim).Read()
		if err != nil {
			return nil, fmt.Errorf("invalid csv header: %w", err)
		}

		mapping, err := ResolveHeaders(headers)
		if err != nil {
			return nil, err
		}

		return &OrderCSV{
			Mapping:    mapping,
			Delimiter:  delim,
			body:       rest,
			headerLine: line,
		}, nil
	}
	return nil, fmt.Errorf("%w: no header row", ErrEmptyFile)
}

func newCSVReader(text string, delim rune) *csv.Reader {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	return r
}

// Records yields one record per data row. Each non-blank line is one row,
// so an unbalanced quote never reaches past its own line. Rejected rows
// yield a *RowError and iteration continues; rows whose field count differs
// from the header are skipped without being yielded.
func (c *OrderCSV) Records() iter.Seq2[OrderRecord, error] {
	return func(yield func(OrderRecord, error) bool) {
		width := len(c.Mapping.Headers)
		rest := c.body
		line := c.headerLine

		for rest != "" {
			var current string
			current, rest, _ = strings.Cut(rest, "\n")
			line++
			current = strings.TrimRight(current, "\r")
			if strings.TrimSpace(current) == "" {
				continue
			}

			fields, err := newCSVReader(current, c.Delimiter).Read()
			if err != nil {
				if !yield(OrderRecord{}, &RowError{Line: line, Reason: err.Error()}) {
					return
				}
				continue
			}

			if len(fields) != width {
				slog.Debug("skipping row with unexpected field count",
					"line", line,
					"fields", len(fields),
					"headers", width,
				)
				continue
			}

			rec, reason := c.buildRecord(fields)
			if reason != "" {
				if !yield(OrderRecord{}, &RowError{Line: line, Reason: reason}) {
					return
				}
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// buildRecord routes a row's cells to the canonical fields. A non-empty
// reason means the row must be dropped.
func (c *OrderCSV) buildRecord(fields []string) (OrderRecord, string) {
	cell := func(key string) string {
		if i, ok := c.Mapping.Index(key); ok {
			return fields[i]
		}
		return ""
	}

	rec := OrderRecord{
		Succursale:  CleanCell(cell(KeySuccursale)),
		Operateur:   CleanCell(cell(KeyOperateur)),
		NumCde:      CleanCell(cell(KeyNumCde)),
		PoClient:    optionalText(cell(KeyPoClient)),
		Reference:   CleanCell(cell(KeyReference)),
		Designation: CleanCell(cell(KeyDesignation)),
		QteCde:      parseQuantity(cell(KeyQteCde)),
		QteLivree:   parseQuantity(cell(KeyQteLivree)),
		NumBl:       optionalText(cell(KeyNumBl)),
		Status:      CleanCell(cell(KeyStatus)),
		NumClient:   optionalText(cell(KeyNumClient)),
		NomClients:  optionalText(cell(KeyNomClients)),
	}
	if rec.Status == "" {
		rec.Status = DefaultStatus
	}

	if raw := CleanCell(cell(KeyDateCde)); raw != "" {
		d, ok := convertDateCell(raw)
		if !ok {
			return OrderRecord{}, fmt.Sprintf("invalid date in date_cde: %q", raw)
		}
		rec.DateCde = &d
	}
	if d, ok := convertDateCell(cell(KeyDateBl)); ok {
		rec.DateBl = &d
	}

	if err := validate.Struct(rec); err != nil {
		return OrderRecord{}, validationMessage(err)
	}
	return rec, ""
}

// NormalizeStats counts the outcome of a normalization pass.
type NormalizeStats struct {
	Valid    int
	Rejected int
}

// NormalizeOrders parses text and collects every valid record. Rejected
// rows are logged as warnings and counted.
func NormalizeOrders(text string) ([]OrderRecord, NormalizeStats, error) {
	var stats NormalizeStats

	parsed, err := ParseOrders(text)
	if err != nil {
		return nil, stats, err
	}

	var records []OrderRecord
	for rec, err := range parsed.Records() {
		if err != nil {
			stats.Rejected++
			slog.Warn("order row rejected", "error", err)
			continue
		}
		records = append(records, rec)
	}
	stats.Valid = len(records)

	if len(records) == 0 {
		return nil, stats, ErrNoValidRows
	}
	return records, stats, nil
}
