package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ntreg/hive/verify"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <hive>",
		Short: "Verify structural invariants of a hive",
		Long: `The check command validates the base block, cell layout, byte
conservation and key tree of a hive. It exits non-zero on the first
violation.

Example:
  ntregctl check SYSTEM
  ntregctl check SYSTEM --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
}

type checkResult struct {
	File    string         `json:"file"`
	OK      bool           `json:"ok"`
	Type    string         `json:"type,omitempty"`
	Message string         `json:"message,omitempty"`
	Ref     string         `json:"ref,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func runCheck(args []string) error {
	h, err := openHive(args[0])
	if err != nil {
		return err
	}
	defer h.Close()

	res := checkResult{File: args[0], OK: true}
	verr := verify.AllInvariants(h)
	if verr != nil {
		res.OK = false
		res.Message = verr.Error()
		var ve *verify.ValidationError
		if errors.As(verr, &ve) {
			res.Type = ve.Type
			res.Message = ve.Message
			res.Ref = ve.Ref.String()
			res.Details = ve.Details
		}
	}

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
		return verr
	}
	if verr != nil {
		return verr
	}
	printInfo("%s: %s\n", args[0], styles().ok.Render("ok"))
	return nil
}
