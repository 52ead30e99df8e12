package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/vsinha/blend/pkg/application/dto"
)

// Supported formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ValidFormat reports whether format is supported
func ValidFormat(format string) bool {
	return format == FormatText || format == FormatJSON || format == FormatCSV
}

// WriteResult renders an optimal blend
func WriteResult(w io.Writer, result *dto.BlendResult, format string) error {
	switch format {
	case FormatText:
		return writeResultText(w, result)
	case FormatJSON:
		return writeJSON(w, result)
	case FormatCSV:
		return writeResultCSV(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteDiagnostics renders a ranked cause report
func WriteDiagnostics(w io.Writer, report *dto.DiagnosticReport, format string) error {
	switch format {
	case FormatText:
		return writeDiagnosticsText(w, report)
	case FormatJSON:
		return writeJSON(w, report)
	case FormatCSV:
		return writeDiagnosticsCSV(w, report)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteSweep renders one row per sweep point
func WriteSweep(w io.Writer, points []dto.SweepPoint, format string) error {
	switch format {
	case FormatText:
		return writeSweepText(w, points)
	case FormatJSON:
		return writeJSON(w, sweepRows(points))
	case FormatCSV:
		return writeSweepCSV(w, points)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeResultText(w io.Writer, result *dto.BlendResult) error {
	fmt.Fprintf(w, "Blend Plan\n")
	fmt.Fprintf(w, "==========\n\n")
	fmt.Fprintf(w, "Total cost:      %s\n", result.TotalCost.StringFixed(2))
	fmt.Fprintf(w, "  ingredients:   %s\n", result.IngredientCost.StringFixed(2))
	fmt.Fprintf(w, "  activation:    %s\n", result.ActivationFees.StringFixed(2))
	fmt.Fprintf(w, "Total quantity:  %.2f\n", result.TotalQuantity)
	fmt.Fprintf(w, "Distinct used:   %d\n", result.DistinctCount)
	fmt.Fprintf(w, "Solver:          %s (%d nodes, %v)\n\n", result.Solver, result.Nodes, result.Elapsed)

	if len(result.Properties) > 0 {
		fmt.Fprintf(w, "%-15s %-10s %-10s %-10s\n", "Property", "Achieved", "Min", "Max")
		fmt.Fprintf(w, "%-15s %-10s %-10s %-10s\n", "---------------", "----------", "----------", "----------")
		for _, p := range result.Properties {
			fmt.Fprintf(w, "%-15s %-10.3f %-10g %-10g\n", p.Property, p.Achieved, p.Min, p.Max)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%-15s %-10s %-8s %-12s %-10s\n", "Ingredient", "Quantity", "Share", "Cost", "Fee")
	fmt.Fprintf(w, "%-15s %-10s %-8s %-12s %-10s\n", "---------------", "----------", "--------", "------------", "----------")
	for _, line := range result.Used {
		id := string(line.ID)
		if line.UnboundedInventory {
			id += "*"
		}
		fmt.Fprintf(w, "%-15s %-10.2f %-8s %-12s %-10s\n",
			id, line.Quantity, fmt.Sprintf("%.1f%%", 100*line.Share),
			line.IngredientCost.StringFixed(2), line.ActivationFee.StringFixed(2))
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeResultCSV(w io.Writer, result *dto.BlendResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "quantity", "share", "ingredient_cost", "activation_fee", "unbounded_inventory"}); err != nil {
		return err
	}
	for _, line := range result.Used {
		record := []string{
			string(line.ID),
			formatFloat(line.Quantity),
			formatFloat(line.Share),
			line.IngredientCost.String(),
			line.ActivationFee.String(),
			strconv.FormatBool(line.UnboundedInventory),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeDiagnosticsText(w io.Writer, report *dto.DiagnosticReport) error {
	fmt.Fprintf(w, "Diagnostics (%s)\n", report.Status)
	fmt.Fprintf(w, "================\n\n")
	fmt.Fprintf(w, "%-24s %-6s %-12s %s\n", "Cause", "Score", "Group", "Detail")
	fmt.Fprintf(w, "%-24s %-6s %-12s %s\n", "------------------------", "------", "------------", "------")
	for _, cause := range report.Causes {
		fmt.Fprintf(w, "%-24s %-6.2f %-12s %s\n", cause.Code, cause.Score, cause.Group, cause.Message)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeDiagnosticsCSV(w io.Writer, report *dto.DiagnosticReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"code", "score", "group", "message"}); err != nil {
		return err
	}
	for _, cause := range report.Causes {
		if err := writer.Write([]string{string(cause.Code), formatFloat(cause.Score), cause.Group, cause.Message}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// sweepRow is the serialisable form of a sweep point
type sweepRow struct {
	Label         string  `json:"label"`
	Value         float64 `json:"value"`
	Status        string  `json:"status"`
	TotalCost     string  `json:"total_cost,omitempty"`
	TotalQuantity float64 `json:"total_quantity,omitempty"`
	DistinctCount int     `json:"distinct_count,omitempty"`
	Error         string  `json:"error,omitempty"`
}

func sweepRows(points []dto.SweepPoint) []sweepRow {
	rows := make([]sweepRow, len(points))
	for i, p := range points {
		row := sweepRow{Label: p.Label, Value: p.Value}
		if p.Err != nil {
			row.Status = "failed"
			row.Error = p.Err.Error()
		} else if p.Result != nil {
			row.Status = "optimal"
			row.TotalCost = p.Result.TotalCost.StringFixed(2)
			row.TotalQuantity = p.Result.TotalQuantity
			row.DistinctCount = p.Result.DistinctCount
		}
		rows[i] = row
	}
	return rows
}

func writeSweepText(w io.Writer, points []dto.SweepPoint) error {
	fmt.Fprintf(w, "%-20s %-10s %-10s %-12s %-10s %s\n", "Parameter", "Value", "Status", "Cost", "Quantity", "Detail")
	fmt.Fprintf(w, "%-20s %-10s %-10s %-12s %-10s %s\n", "--------------------", "----------", "----------", "------------", "----------", "------")
	for _, row := range sweepRows(points) {
		fmt.Fprintf(w, "%-20s %-10g %-10s %-12s %-10.2f %s\n",
			row.Label, row.Value, row.Status, row.TotalCost, row.TotalQuantity, row.Error)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeSweepCSV(w io.Writer, points []dto.SweepPoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"label", "value", "status", "total_cost", "total_quantity", "distinct_count", "error"}); err != nil {
		return err
	}
	for _, row := range sweepRows(points) {
		record := []string{
			row.Label,
			formatFloat(row.Value),
			row.Status,
			row.TotalCost,
			formatFloat(row.TotalQuantity),
			strconv.Itoa(row.DistinctCount),
			row.Error,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
