package main

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ntreg/hive"
	"github.com/joshuapare/ntreg/hive/values"
)

var (
	setType      string
	setCreateKey bool
)

func init() {
	cmd := newSetCmd()
	cmd.Flags().StringVar(&setType, "type", "sz", "Value type (sz, expand_sz, multi_sz, dword, qword, binary or a type code)")
	cmd.Flags().BoolVar(&setCreateKey, "create-key", false, "Create missing keys along the path")
	rootCmd.AddCommand(cmd)
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <hive> <path> <name> <value>",
		Short: "Set a registry value",
		Long: `The set command creates or replaces a value under the key at path and
writes the hive back in place. The hive never grows: the edit fails if
the free space inside its pages is not enough.

Example:
  ntregctl set SOFTWARE 'MyApp' Version 1.0.0
  ntregctl set SOFTWARE 'MyApp' Enabled 1 --type dword
  ntregctl set SOFTWARE 'MyApp' Data 0102030405 --type binary
  ntregctl set SOFTWARE 'MyApp' Paths 'a,b,c' --type multi_sz
  ntregctl set SOFTWARE 'NewApp\Sub' Name Test --create-key`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(args)
		},
	}
}

func runSet(args []string) error {
	hivePath, keyPath, name, raw := args[0], args[1], args[2], args[3]

	typ, err := values.ParseType(setType)
	if err != nil {
		return err
	}
	data, err := parseData(typ, raw)
	if err != nil {
		return fmt.Errorf("failed to parse value: %w", err)
	}

	printVerbose("Opening hive: %s\n", hivePath)
	h, err := hive.Open(hivePath, hive.Options{Logger: newLogger()})
	if err != nil {
		return err
	}
	defer h.Close()

	key, err := resolveKey(h, keyPath)
	if errors.Is(err, hive.ErrNotFound) && setCreateKey {
		key, err = createPath(h, keyPath)
	}
	if err != nil {
		return err
	}

	valuePath := strings.ReplaceAll(name, `\`, `\\`)
	if _, err := h.AddValue(key, name, typ); err != nil && !errors.Is(err, hive.ErrAlreadyExists) {
		return fmt.Errorf("failed to set value: %w", err)
	}
	if err := h.WriteValueData(key, valuePath, data, typ); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	if err := h.Write(); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"hive":    hivePath,
			"path":    keyPath,
			"name":    name,
			"type":    typ.String(),
			"size":    len(data),
			"success": true,
		})
	}
	printInfo("Set %s\\%s (%s, %d bytes)\n", keyPath, name, typ, len(data))
	return nil
}

// createPath walks path from the root, adding each missing key.
func createPath(h *hive.Hive, path string) (hive.Ref, error) {
	cur := h.Root()
	for _, seg := range strings.Split(path, `\`) {
		if seg == "" {
			continue
		}
		next, err := h.TravPath(cur, seg, false)
		if errors.Is(err, hive.ErrNotFound) {
			printVerbose("Creating key: %s\n", seg)
			next, err = h.AddKey(cur, seg)
		}
		if err != nil {
			return hive.NoRef, err
		}
		cur = next
	}
	return cur, nil
}

// parseData converts the command-line form of a value into its stored
// payload.
func parseData(t values.Type, s string) ([]byte, error) {
	switch {
	case t.IsString():
		return values.EncodeString(s)
	case t == values.MultiString:
		if s == "" {
			return values.EncodeMultiString(nil)
		}
		return values.EncodeMultiString(strings.Split(s, ","))
	case t.IsDWORD():
		v, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return nil, err
		}
		return values.EncodeDWORD(t, uint32(v)), nil
	case t == values.QWORD:
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, err
		}
		return binary.LittleEndian.AppendUint64(nil, v), nil
	}
	return hex.DecodeString(strings.ReplaceAll(s, " ", ""))
}
