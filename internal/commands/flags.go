package commands

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// nullDecimalFlag reads a string flag as a decimal. An unset flag is null.
func nullDecimalFlag(cmd *cobra.Command, name string) (decimal.NullDecimal, error) {
	if !cmd.Flags().Changed(name) {
		return decimal.NullDecimal{}, nil
	}
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("--%s: invalid number %q", name, s)
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("--%s must not be negative", name)
	}
	return decimal.NewNullDecimal(d), nil
}

// parseDecimalArg parses a positional number such as "-10" or "12.5".
func parseDecimalArg(what, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid number %q", what, s)
	}
	return d, nil
}

// parseIntArg parses a positional integer.
func parseIntArg(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", what, s)
	}
	return n, nil
}
