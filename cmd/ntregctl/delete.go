package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/ntreg/hive"
)

var (
	deleteValue     string
	deleteRecursive bool
)

func init() {
	cmd := newDeleteCmd()
	cmd.Flags().StringVar(&deleteValue, "value", "", "Delete this value of the key instead of the key")
	cmd.Flags().BoolVarP(&deleteRecursive, "recursive", "r", false, "Delete the key's subtree first")
	rootCmd.AddCommand(cmd)
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <hive> <path>",
		Short: "Delete a key or a value",
		Long: `The delete command removes the key at path, or one of its values when
--value is given, and writes the hive back in place. A key with subkeys
or values is only removed with --recursive.

Example:
  ntregctl delete SOFTWARE 'MyApp' --value Version
  ntregctl delete SOFTWARE 'MyApp' --recursive`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(args)
		},
	}
}

func runDelete(args []string) error {
	hivePath, keyPath := args[0], args[1]

	printVerbose("Opening hive: %s\n", hivePath)
	h, err := hive.Open(hivePath, hive.Options{Logger: newLogger()})
	if err != nil {
		return err
	}
	defer h.Close()

	what := keyPath
	if deleteValue != "" {
		key, err := resolveKey(h, keyPath)
		if err != nil {
			return err
		}
		if err := h.DelValue(key, deleteValue); err != nil {
			return err
		}
		what = keyPath + `\` + deleteValue
	} else if err := deleteKey(h, keyPath); err != nil {
		return err
	}

	if err := h.Write(); err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]any{"hive": hivePath, "deleted": what, "success": true})
	}
	printInfo("Deleted %s\n", what)
	return nil
}

func deleteKey(h *hive.Hive, keyPath string) error {
	key, err := h.Lookup(keyPath)
	if err != nil {
		return err
	}
	if key == h.Root() {
		if !deleteRecursive {
			return hive.ErrNotEmpty
		}
		return h.RDelKeys(key)
	}
	name, err := h.KeyName(key)
	if err != nil {
		return err
	}
	parent, err := h.TravPath(key, "..", false)
	if err != nil {
		return err
	}
	if deleteRecursive {
		return h.RDelKeys(key)
	}
	return h.DelKey(parent, name)
}
