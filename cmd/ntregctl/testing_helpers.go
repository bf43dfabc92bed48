package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ntreg/hive"
	"github.com/joshuapare/ntreg/hive/values"
	"github.com/joshuapare/ntreg/internal/testutil"
	"github.com/joshuapare/ntreg/internal/writer"
)

// fixtureHive writes a small SOFTWARE-shaped hive to a temp file:
//
//	\Microsoft\Windows\Version  (REG_SZ "10.0")
//	\Microsoft\Windows\Build    (REG_DWORD 19045)
//	\Microsoft\Windows\@        (REG_BINARY de ad be ef 01)
//	\Classes
func fixtureHive(t *testing.T) string {
	t.Helper()
	sink := &writer.MemWriter{}
	h, err := hive.Load(testutil.NewHive(t, 2), hive.Options{Sink: sink})
	require.NoError(t, err)

	ms, err := h.AddKey(h.Root(), "Microsoft")
	require.NoError(t, err)
	win, err := h.AddKey(ms, "Windows")
	require.NoError(t, err)
	_, err = h.AddKey(h.Root(), "Classes")
	require.NoError(t, err)

	_, err = h.AddValue(win, "Version", values.String)
	require.NoError(t, err)
	sz, err := values.EncodeString("10.0")
	require.NoError(t, err)
	require.NoError(t, h.WriteValueData(win, "Version", sz, values.String))

	_, err = h.AddValue(win, "Build", values.DWORD)
	require.NoError(t, err)
	require.NoError(t, h.PutDWORD(win, "Build", 19045))

	_, err = h.AddValue(win, "@", values.Binary)
	require.NoError(t, err)
	require.NoError(t, h.WriteValueData(win, "@", []byte{0xde, 0xad, 0xbe, 0xef, 0x01}, values.Binary))

	require.NoError(t, h.Write())
	return testutil.WriteFile(t, "SOFTWARE", sink.Buf)
}

// resetFlags restores the global and per-command flags to their defaults.
func resetFlags() {
	verbose, quiet, jsonOut, debug = false, false, false, false
	lsKeysOnly, getRaw, getType, cellsFree = false, false, "", false
	setType, setCreateKey = "sz", false
	deleteValue, deleteRecursive = "", false
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	defer func() { stdout = orig }()
	err := fn()
	return buf.String(), err
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
