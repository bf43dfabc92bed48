package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ntreg/hive"
)

var lsKeysOnly bool

func init() {
	rootCmd.AddCommand(newLsCmd())
}

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <hive> [path]",
		Short: "List the subkeys and values of a key",
		Long: `The ls command lists the subkeys of a key, in index order, followed
by its values. Without a path the root key is listed.

Example:
  ntregctl ls SYSTEM
  ntregctl ls SYSTEM 'ControlSet001\Services'
  ntregctl ls SOFTWARE Microsoft --keys`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(args)
		},
	}
	cmd.Flags().BoolVar(&lsKeysOnly, "keys", false, "List subkeys only")
	return cmd
}

type lsEntry struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Type string `json:"type,omitempty"`
	Size int    `json:"size,omitempty"`
	Ref  string `json:"ref"`
}

func runLs(args []string) error {
	h, err := openHive(args[0])
	if err != nil {
		return err
	}
	defer h.Close()

	path := ""
	if len(args) == 2 {
		path = args[1]
	}
	key, err := resolveKey(h, path)
	if err != nil {
		return err
	}

	entries, err := listKey(h, key)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(entries)
	}
	st := styles()
	for _, e := range entries {
		if e.Kind == "key" {
			printInfo("%s\n", st.key.Render(e.Name+`\`))
			continue
		}
		printInfo("%-32s %s %d\n", e.Name, st.muted.Render(fmt.Sprintf("%-28s", e.Type)), e.Size)
	}
	return nil
}

// listKey collects subkeys and, unless --keys is set, values of key.
// Damaged children are skipped and reported by the enumerators.
func listKey(h *hive.Hive, key hive.Ref) ([]lsEntry, error) {
	subs, err := h.Subkeys(key)
	if err != nil && len(subs) == 0 {
		return nil, err
	}
	if err != nil {
		printVerbose("skipped damaged subkeys: %v\n", err)
	}
	var out []lsEntry
	for _, s := range subs {
		out = append(out, lsEntry{Name: s.Name, Kind: "key", Ref: s.Ref.String()})
	}
	if lsKeysOnly {
		return out, nil
	}
	vals, err := h.Values(key)
	if err != nil {
		printVerbose("skipped damaged values: %v\n", err)
	}
	for _, v := range vals {
		out = append(out, lsEntry{
			Name: v.Name,
			Kind: "value",
			Type: v.Type.String(),
			Size: v.Size,
			Ref:  v.Ref.String(),
		})
	}
	return out, nil
}
