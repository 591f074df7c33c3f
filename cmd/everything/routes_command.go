package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vbonduro/everything/internal/web"
)

func newRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the HTTP routes served by the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := web.NewServer(web.Deps{}, slog.New(slog.DiscardHandler))
			rows := make([][]string, 0, len(srv.Routes()))
			for _, route := range srv.Routes() {
				method, path, _ := strings.Cut(route, " ")
				rows = append(rows, []string{method, path})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Method", "Path"}, rows))
			return err
		},
	}
}
