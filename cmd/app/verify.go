package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/prasetyowira/cardgen/constant"
	"github.com/prasetyowira/cardgen/infrastructure/qrcode"
	"github.com/spf13/cobra"
)

type verifyResult struct {
	File    string `json:"file"`
	OK      bool   `json:"ok"`
	Decoded string `json:"decoded,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func newVerifyCmd(flags *rootFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Decode every card in a folder and check its QR code against the file name",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(dir) == "" {
				return fmt.Errorf("--dir is required")
			}

			files, err := filepath.Glob(filepath.Join(dir, "*"+constant.CardExtension))
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no %s cards found in %s", constant.CardExtension, dir)
			}
			sort.Strings(files)

			a, err := newApp(flags, historyOff)
			if err != nil {
				return err
			}
			defer closeApp(a)

			results := make([]verifyResult, 0, len(files))
			failed := 0
			for _, f := range files {
				r := verifyCard(a.qr, f)
				if !r.OK {
					failed++
				}
				results = append(results, r)
			}

			out := cmd.OutOrStdout()
			if flags.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "FILE\tSTATUS\tDETAIL")
				for _, r := range results {
					status := "ok"
					if !r.OK {
						status = "FAIL"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", filepath.Base(r.File), status, r.Detail)
				}
				_ = w.Flush()
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d cards failed verification", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "folder with generated cards")
	return cmd
}

// verifyCard checks that the QR code in path encodes the redemption URL for
// the file's base name.
func verifyCard(qr *qrcode.Generator, path string) verifyResult {
	code := strings.TrimSuffix(filepath.Base(path), constant.CardExtension)
	res := verifyResult{File: path}

	decoded, err := qrcode.ScanFile(path)
	if err != nil {
		res.Detail = err.Error()
		return res
	}
	res.Decoded = decoded

	if want := qr.Payload(code); decoded != want {
		res.Detail = fmt.Sprintf("decoded %q, want %q", decoded, want)
		return res
	}
	res.OK = true
	return res
}
