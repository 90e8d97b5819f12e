package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

// outputResult writes value as JSON or YAML, or as a table of rows under header.
func outputResult(out io.Writer, value interface{}, header []string, rows [][]string) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		return writeJSON(out, value)
	case constants.FormatYAML:
		return writeYAML(out, value)
	default:
		return renderTable(out, header, rows)
	}
}

func renderTable(out io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(out)

	headerCells := make([]any, len(header))
	for i, cell := range header {
		headerCells[i] = cell
	}

	table.Header(headerCells...)

	err := table.Bulk(rows)
	if err != nil {
		return fmt.Errorf("failed to append table rows: %w", err)
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatAmount(amount int64, currency string) string {
	return strconv.FormatInt(amount, 10) + " " + currency
}

func formatTimestamp(unix int64) string {
	if unix == 0 {
		return constants.NotAvailable
	}

	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

func formatBool(value bool) string {
	if value {
		return constants.BooleanTrue
	}

	return constants.BooleanFalse
}

func orNotAvailable(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
