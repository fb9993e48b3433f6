package main

import (
	"fmt"
	"strings"

	"github.com/prasetyowira/cardgen/domain/card"
	"github.com/spf13/cobra"
)

func newPreviewCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <code>",
		Short: "Print the redemption URL and its QR code in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.TrimSpace(args[0])
			if code == "" {
				return card.ErrNoCodes
			}

			a, err := newApp(flags, historyOff)
			if err != nil {
				return err
			}
			defer closeApp(a)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.qr.Payload(code))
			a.qr.WriteTerminal(out, code)
			return nil
		},
	}
	return cmd
}
