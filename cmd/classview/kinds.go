package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyz/classview/pkg/classview"
)

func newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List node kinds and their numeric values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, kind := range classview.AllKinds() {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", int(kind), kind); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
