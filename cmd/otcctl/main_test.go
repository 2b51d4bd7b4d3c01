package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportDryRun(t *testing.T) {
	path := writeCSV(t, "SUCCURSALE;OPERATEUR;DATE CDE;NUM CDE;REFERENCE;DESIGNATION;QTE CDE\n"+
		"GDC;john;24/06/2024;CMD001;REF1;Part A;10\n"+
		"GDC;john;24/06/2024;;REF2;Part B;5\n")

	out, err := runCmd(t, "import", "--file", path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "orders.csv: 1 valid rows, 1 rejected")
}

func TestImportDryRunMissingHeaders(t *testing.T) {
	path := writeCSV(t, "SUCCURSALE;OPERATEUR\nGDC;john\n")

	_, err := runCmd(t, "import", "--file", path, "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAL004")
}

func TestImportRequiresFile(t *testing.T) {
	_, err := runCmd(t, "import", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "file" not set`)
}

func TestCalcMethodRequiresFlags(t *testing.T) {
	_, err := runCmd(t, "calc-method", "--project", "6f1c2b1e-3d4a-4f5b-9c6d-7e8f9a0b1c2d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method")
}
