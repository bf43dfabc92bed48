package main

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ntreg/hive/values"
)

var (
	getRaw  bool
	getType string
)

func init() {
	rootCmd.AddCommand(newGetCmd())
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <hive> <path>",
		Short: "Print the data of a value",
		Long: `The get command resolves a value path (key segments followed by the
value name, "@" for the unnamed value) and prints its data.

Example:
  ntregctl get SYSTEM 'Select\Current'
  ntregctl get SOFTWARE 'Microsoft\Windows NT\CurrentVersion\ProductName'
  ntregctl get SYSTEM 'Select\Current' --type REG_DWORD --raw`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	}
	cmd.Flags().BoolVar(&getRaw, "raw", false, "Print the data as hex")
	cmd.Flags().StringVar(&getType, "type", "", "Fail unless the value has this type")
	return cmd
}

type getResult struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size"`
	Data string `json:"data"`
}

func runGet(args []string) error {
	h, err := openHive(args[0])
	if err != nil {
		return err
	}
	defer h.Close()

	var expected *values.Type
	if getType != "" {
		t, err := values.ParseType(getType)
		if err != nil {
			return err
		}
		expected = &t
	}

	kv, err := h.ReadValueData(h.Root(), args[1], expected)
	if err != nil {
		return err
	}

	data := values.Format(kv.Type, kv.Data)
	if getRaw {
		data = hex.EncodeToString(kv.Data)
	}
	if jsonOut {
		return printJSON(getResult{Path: args[1], Type: kv.Type.String(), Size: kv.Len(), Data: data})
	}
	printVerbose("%s (%d bytes)\n", kv.Type, kv.Len())
	printInfo("%s\n", data)
	return nil
}
