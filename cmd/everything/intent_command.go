package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vbonduro/everything/internal/nlu"
)

func newIntentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "intent <text...>",
		Short: "Show how a spoken phrase would be understood",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), describeIntent(strings.Join(args, " "), time.Now()))
			return err
		},
	}
}

func describeIntent(text string, now time.Time) string {
	in := nlu.Parse(text)
	rows := [][]string{{"intent", in.Name}}

	keys := make([]string, 0, len(in.Params))
	for k := range in.Params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		rows = append(rows, []string{"param " + k, in.Params[k]})
	}

	call, ok := nlu.Plan(in, now)
	if !ok {
		rows = append(rows, []string{"call", "none"})
		return renderTable([]string{"Field", "Value"}, rows)
	}
	rows = append(rows, []string{"call", call.Method + " " + call.Path})
	if call.Payload != nil {
		payload, err := json.Marshal(call.Payload)
		if err != nil {
			payload = []byte(err.Error())
		}
		rows = append(rows, []string{"payload", string(payload)})
	}
	return renderTable([]string{"Field", "Value"}, rows)
}
