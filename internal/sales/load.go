package sales

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// LoadOptions controls how a dataset file is read.
type LoadOptions struct {
	// Delimiter for CSV. If 0, chosen by extension (.tsv -> tab, else comma).
	Delimiter rune
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Numeric parsing locale. 0 auto-detects per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// MissingColumnsError reports required header columns absent from a dataset.
type MissingColumnsError struct {
	Source  string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Columns, ", "))
}

var requiredColumns = []string{
	ColDate, ColProductType, ColMarketingStrategy, ColInteractionType, ColQuantitySold, ColConverted,
}

// rowSource yields raw rows; Next returns io.EOF after the last row.
type rowSource interface {
	Next() ([]string, error)
}

type csvSource struct{ r *csv.Reader }

func (s csvSource) Next() ([]string, error) { return s.r.Read() }

// Load reads a CSV, TSV or XLSX dataset selected by file extension.
func Load(path string, opt LoadOptions) (*Table, error) {
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		src, err := openSheet(path, opt.Sheet)
		if err != nil {
			return nil, err
		}
		return build(name, src, opt, true)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return LoadReader(f, name, opt)
}

// LoadReader reads delimited text from r. name labels the table in messages.
func LoadReader(r io.Reader, name string, opt LoadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	return build(name, csvSource{r: cr}, opt, false)
}

// build reads the header and typed rows from src. serialDates accepts numeric
// Excel date cells in the Date column.
func build(name string, src rowSource, opt LoadOptions, serialDates bool) (*Table, error) {
	header, err := src.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MissingColumnsError{Source: name, Columns: requiredColumns}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	col := func(c string) int {
		if i, ok := idx[strings.ToLower(c)]; ok {
			return i
		}
		return -1
	}
	var missing []string
	for _, c := range requiredColumns {
		if col(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Source: name, Columns: missing}
	}
	iDate, iProd, iStrat := col(ColDate), col(ColProductType), col(ColMarketingStrategy)
	iInter, iQty, iConv := col(ColInteractionType), col(ColQuantitySold), col(ColConverted)
	iAnom, iRegion := col(ColAnomaly), col(ColRegion)

	t := &Table{Name: name, HasAnomaly: iAnom >= 0, HasRegion: iRegion >= 0}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	cell := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	line := 1
	for {
		rec, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		if len(t.Records)+t.Skipped >= maxRows {
			break
		}
		d, ok := ParseDate(cell(rec, iDate))
		if !ok && serialDates {
			d, ok = parseExcelSerial(cell(rec, iDate))
		}
		if !ok {
			t.skip(line, "date", cell(rec, iDate))
			continue
		}
		q, ok := parseNumeric(cell(rec, iQty), opt.DecimalSeparator, opt.ThousandsSeparator)
		if !ok {
			t.skip(line, "quantity", cell(rec, iQty))
			continue
		}
		conv, ok := parseFlag(cell(rec, iConv))
		if !ok {
			t.skip(line, "converted flag", cell(rec, iConv))
			continue
		}
		var anom bool
		if iAnom >= 0 {
			if anom, ok = parseFlag(cell(rec, iAnom)); !ok {
				t.skip(line, "anomaly flag", cell(rec, iAnom))
				continue
			}
		}
		t.Records = append(t.Records, Record{
			Date:              d,
			ProductType:       cell(rec, iProd),
			MarketingStrategy: cell(rec, iStrat),
			InteractionType:   cell(rec, iInter),
			QuantitySold:      q,
			Converted:         conv,
			Anomaly:           anom,
			Region:            cell(rec, iRegion),
		})
	}
	if t.Skipped > 0 {
		t.Warnings = append(t.Warnings, fmt.Sprintf("skipped %d rows with unparsable cells", t.Skipped))
	}
	return t, nil
}

// skip records a dropped row; only the first few get their own warning line.
func (t *Table) skip(line int, what, val string) {
	t.Skipped++
	if t.Skipped <= 5 {
		t.Warnings = append(t.Warnings, fmt.Sprintf("line %d: invalid %s %q", line, what, val))
	}
}
