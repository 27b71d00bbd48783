package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/bhada/internal/billing"
	"github.com/Veraticus/bhada/internal/model"
	"github.com/Veraticus/bhada/internal/testutil"
	"github.com/Veraticus/bhada/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type testEnv struct {
	dir     string
	cfg     string
	control string
	ledger  string
}

func setupEnv(t *testing.T) testEnv {
	t.Helper()

	dir := t.TempDir()
	env := testEnv{
		dir:     dir,
		cfg:     filepath.Join(dir, "config.yaml"),
		control: filepath.Join(dir, "control.xlsx"),
		ledger:  filepath.Join(dir, "ledger.xlsx"),
	}

	yaml := fmt.Sprintf("database:\n  path: %q\nworkbook:\n  control: %q\n  ledger: %q\n",
		filepath.Join(dir, "bhada.db"), env.control, env.ledger)
	require.NoError(t, os.WriteFile(env.cfg, []byte(yaml), 0600))

	require.NoError(t, workbook.SaveControlPanel(env.control, []model.RawRule{
		testutil.FixedRule("ચેનલ", "10", ""),
		testutil.SizeRule("પ્લેટ", "1.5", ""),
	}))

	require.NoError(t, workbook.SaveLedgers(env.ledger, []workbook.ExpandedLedger{
		{Customer: "Ramesh", Lines: billing.Expand([]model.TransactionRow{
			testutil.NewRow("ચેનલ").Serial("1").Out(5).In(2).Dates(0, 12).Build(),
			testutil.NewRow("પ્લેટ").Serial("2").Size(2).Out(4).In(4).Rate("2").Dates(0, 3).Build(),
		})},
		{Customer: "Suresh", Lines: billing.Expand([]model.TransactionRow{
			testutil.NewRow("સિકંજા").Serial("1").Out(2).Dates(0, -1).Build(),
		})},
	}))

	return env
}

func (e testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", e.cfg, "--log-level", "error"}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	require.NoError(t, err, "bhada %s", strings.Join(args, " "))
	return out
}

func TestVersion(t *testing.T) {
	env := setupEnv(t)
	assert.Contains(t, env.mustRun(t, "version"), "bhada dev")
}

func TestRulesImportListExport(t *testing.T) {
	env := setupEnv(t)

	assert.Contains(t, env.mustRun(t, "rules", "list"), "No rules found")
	assert.Contains(t, env.mustRun(t, "rules", "import"), "Imported 2 rules")

	list := env.mustRun(t, "rules", "list")
	assert.Contains(t, list, "ચેનલ")
	assert.Contains(t, list, "પ્લેટ")

	out, err := env.run(t, "n\n", "rules", "import", env.control)
	require.NoError(t, err)
	assert.Contains(t, out, "Rules left unchanged")

	exported := filepath.Join(env.dir, "exported.xlsx")
	env.mustRun(t, "rules", "export", exported)
	raws, err := workbook.LoadControlPanel(exported)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "ચેનલ", raws[0].ItemName)
	assert.Equal(t, "10", raws[0].FixedRate)
}

func TestLedgerWorkflow(t *testing.T) {
	env := setupEnv(t)

	assert.Contains(t, env.mustRun(t, "ledger", "import", "--rules"), "Imported 2 customers with 3 rows")

	show := env.mustRun(t, "ledger", "show", "Ramesh", "--diagnostics")
	assert.Contains(t, show, "ચેનલ")
	assert.Contains(t, show, model.OutstandingSerial)
	assert.Contains(t, show, "Total rent ₹74.00, outstanding units 3")

	dash := env.mustRun(t, "dashboard")
	assert.Contains(t, dash, "Customers: 2")
	assert.Contains(t, dash, "Total rent: ₹74.00")
	assert.Contains(t, dash, "Outstanding units: 5")

	saved := filepath.Join(env.dir, "saved.xlsx")
	env.mustRun(t, "ledger", "recompute", "--save", saved, "--settle", "--workers", "2")

	ledgers, err := workbook.LoadLedgers(saved)
	require.NoError(t, err)
	require.Len(t, ledgers, 2)
	assert.Equal(t, "Ramesh", ledgers[0].Customer)
	require.Len(t, ledgers[0].Rows, 2, "outstanding lines are not read back")
	require.NotNil(t, ledgers[0].Rows[0].SuppliedDays)
	assert.Equal(t, "10", ledgers[0].Rows[0].SuppliedDays.String())

	_, err = env.run(t, "", "ledger", "show", "Nobody")
	assert.Error(t, err)
}

func TestLedgerExport(t *testing.T) {
	env := setupEnv(t)
	env.mustRun(t, "ledger", "import", "--rules")

	output := filepath.Join(env.dir, "ramesh.xlsx")
	assert.Contains(t, env.mustRun(t, "ledger", "export", "Ramesh", "-o", output), "Exported Ramesh")

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{"Ramesh", workbook.ControlSheetName}, f.GetSheetList())
}

func TestLedgerDelete(t *testing.T) {
	env := setupEnv(t)
	env.mustRun(t, "ledger", "import")

	out, err := env.run(t, "\n", "ledger", "delete", "Suresh")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing deleted")

	assert.Contains(t, env.mustRun(t, "ledger", "delete", "Suresh", "--yes"), "Deleted Suresh")
	assert.Contains(t, env.mustRun(t, "dashboard"), "Customers: 1")

	_, err = env.run(t, "", "ledger", "delete", "Suresh", "--yes")
	assert.Error(t, err)
}

func TestLedgerSheetsRequiresTarget(t *testing.T) {
	env := setupEnv(t)
	_, err := env.run(t, "", "ledger", "sheets")
	assert.Error(t, err)
}

func TestMigrateStatus(t *testing.T) {
	env := setupEnv(t)

	env.mustRun(t, "migrate")
	out := env.mustRun(t, "migrate", "--status")
	assert.Contains(t, out, "Current version: 2")
	assert.Contains(t, out, "Latest version: 2")
}
