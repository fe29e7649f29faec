package incentives

import (
	"bufio"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/jviciana84/dealerops-backend/pkg/errors"
)

// CostRow is one parsed line of the warranty costs upload.
type CostRow struct {
	Matricula string
	Garantia  *decimal.Decimal
	Gastos360 *decimal.Decimal
}

// ParseCostsCSV reads the back-office cost sheet: semicolon separated with a
// header line of matricula;garantia;gastos_360 (any column order), decimal
// comma allowed. Unparseable numbers come back nil so the row keeps its
// pending state instead of silently writing a zero.
func ParseCostsCSV(r io.Reader) ([]CostRow, error) {
	scanner := bufio.NewScanner(r)

	var header []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		header = splitCostLine(line)
		break
	}
	if header == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty csv file")
	}

	matriculaIdx, garantiaIdx, gastosIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(col) {
		case "matricula":
			matriculaIdx = i
		case "garantia":
			garantiaIdx = i
		case "gastos_360":
			gastosIdx = i
		}
	}
	if matriculaIdx == -1 || garantiaIdx == -1 || gastosIdx == -1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, `csv must contain "matricula", "garantia" and "gastos_360" columns`)
	}

	maxIdx := matriculaIdx
	if garantiaIdx > maxIdx {
		maxIdx = garantiaIdx
	}
	if gastosIdx > maxIdx {
		maxIdx = gastosIdx
	}

	var rows []CostRow
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		values := splitCostLine(line)
		if len(values) <= maxIdx {
			continue
		}
		plate := strings.ToUpper(values[matriculaIdx])
		if plate == "" {
			continue
		}
		rows = append(rows, CostRow{
			Matricula: plate,
			Garantia:  parseCostValue(values[garantiaIdx]),
			Gastos360: parseCostValue(values[gastosIdx]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv")
	}
	return rows, nil
}

func splitCostLine(line string) []string {
	parts := strings.Split(line, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseCostValue(raw string) *decimal.Decimal {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if cleaned == "" {
		cleaned = "0"
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &value
}
