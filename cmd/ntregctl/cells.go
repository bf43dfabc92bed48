package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ntreg/hive"
)

var cellsFree bool

func init() {
	rootCmd.AddCommand(newCellsCmd())
}

func newCellsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cells <hive>",
		Short: "Dump the page and cell layout of a hive",
		Long: `The cells command walks every page and prints each cell's reference,
size, state and record signature.

Example:
  ntregctl cells SYSTEM
  ntregctl cells SYSTEM --free`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCells(args)
		},
	}
	cmd.Flags().BoolVar(&cellsFree, "free", false, "Only print free cells")
	return cmd
}

type cellEntry struct {
	Page string `json:"page"`
	Ref  string `json:"ref"`
	Size int    `json:"size"`
	Used bool   `json:"used"`
	Sig  string `json:"sig,omitempty"`
}

func runCells(args []string) error {
	h, err := openHive(args[0])
	if err != nil {
		return err
	}
	defer h.Close()

	entries, err := collectCells(h)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(entries)
	}
	st := styles()
	page := ""
	for _, e := range entries {
		if e.Page != page {
			page = e.Page
			printInfo("%s\n", st.heading.Render("page "+page))
		}
		state := "free"
		if e.Used {
			state = "used"
		}
		printInfo("  %-10s %6d %s %s\n", e.Ref, e.Size, state, e.Sig)
	}
	return nil
}

func collectCells(h *hive.Hive) ([]cellEntry, error) {
	var out []cellEntry
	for _, p := range h.Pages() {
		it := h.Cells(p)
		for {
			c, err := it.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return out, err
			}
			if cellsFree && c.Allocated() {
				continue
			}
			e := cellEntry{Page: p.String(), Ref: c.Ref.String(), Size: c.Size(), Used: c.Allocated()}
			if c.Allocated() {
				e.Sig = signature(h, c.Ref)
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// signature returns the two-byte record tag of a used cell, or "" for data
// cells that carry no printable tag.
func signature(h *hive.Hive, ref hive.Ref) string {
	b, err := h.Payload(ref)
	if err != nil || len(b) < 2 {
		return ""
	}
	for _, c := range b[:2] {
		if c < 'a' || c > 'z' {
			return ""
		}
	}
	return string(b[:2])
}
