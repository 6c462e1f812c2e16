package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/blueberrycongee/evaldash/pkg/errors"
)

func (a *app) print(v any) error {
	var (
		data []byte
		err  error
	)
	if a.flags.compact {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

// formatError renders err for the terminal, with kind and status for API errors.
func formatError(err error) string {
	apiErr, ok := errors.As(err)
	if !ok {
		return "error: " + err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "error: %s (%s", apiErr.Message, apiErr.Kind)
	if apiErr.HasStatusCode() {
		fmt.Fprintf(&b, ", status %d", apiErr.StatusCode)
	}
	b.WriteString(")")
	for _, d := range apiErr.Details() {
		fmt.Fprintf(&b, "\n  - %s", d.Message)
		if d.Title != "" {
			fmt.Fprintf(&b, " [%s]", d.Title)
		}
	}
	return b.String()
}
