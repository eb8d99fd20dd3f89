package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/vaultswipe/internal/common"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/Veraticus/vaultswipe/internal/session"
	"github.com/Veraticus/vaultswipe/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t       *testing.T
	dir     string
	cfgPath string
	dbPath  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		t:       t,
		dir:     dir,
		cfgPath: filepath.Join(dir, "config.yaml"),
		dbPath:  filepath.Join(dir, "vault.db"),
	}
	env.writeConfig(fmt.Sprintf(`logging:
  level: error
storage:
  backend: sqlite
  path: %s
`, env.dbPath))
	return env
}

func (e *testEnv) writeConfig(content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(e.cfgPath, []byte(content), 0o600))
}

func (e *testEnv) runWithInput(input string, args ...string) (string, error) {
	e.t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(input))
	root.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runWithInput("", args...)
	require.NoError(e.t, err, "vaultswipe %s", strings.Join(args, " "))
	return out
}

// state reads the saved ledger back from the database.
func (e *testEnv) state() model.State {
	e.t.Helper()
	store, err := storage.NewSQLiteStorage(e.dbPath)
	require.NoError(e.t, err)
	defer func() { _ = store.Close() }()
	require.NoError(e.t, store.Migrate(context.Background()))

	sess, err := session.Open(context.Background(), store, session.DefaultKey, ledger.DefaultConfig())
	require.NoError(e.t, err)
	return sess.Engine.State()
}

func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCardCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("card", "add", "Cash", "Back", "--due-day", "15", "--color", "#0F766E")
	assert.Contains(t, out, "Cash Back")
	assert.Contains(t, out, "due the 15th")

	out = env.run("card", "list")
	assert.Contains(t, out, "Cash Back")
	assert.Contains(t, out, "$0.00")

	env.run("card", "rename", "cash back", "Everyday", "Card")
	out = env.run("card", "due", "Everyday Card", "31.6")
	assert.Contains(t, out, "due the 31st")

	_, err := env.runWithInput("", "card", "due", "Everyday Card", "soon")
	require.ErrorIs(t, err, ledger.ErrInvalidDueDay)

	env.run("card", "balance", "Everyday Card", "$1,204.33")
	out = env.run("card", "balance", "Everyday Card")
	assert.Contains(t, out, "$1,204.33")

	state := env.state()
	require.Len(t, state.Cards, 1)
	card := state.Cards[0]
	assert.Equal(t, "Everyday Card", card.Name)
	assert.Equal(t, 31, card.DueDay)
	require.True(t, card.HasCurrentBalance())
	assert.True(t, decimal.RequireFromString("1204.33").Equal(*card.CurrentBalance))

	env.run("card", "balance", "Everyday Card", "--clear")
	assert.False(t, env.state().Cards[0].HasCurrentBalance())

	_, err = env.runWithInput("", "card", "rename", "Nope", "X")
	require.ErrorIs(t, err, ledger.ErrCardNotFound)
}

func TestCardAddRejectsBadDueDay(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runWithInput("", "card", "add", "Cash Back", "--due-day", "fifteenth")
	require.ErrorIs(t, err, ledger.ErrInvalidDueDay)
	assert.Empty(t, env.state().Cards)

	_, err = env.runWithInput("", "card", "add", "   ")
	require.ErrorIs(t, err, ledger.ErrEmptyName)
}

func TestCardDelete(t *testing.T) {
	env := newTestEnv(t)
	env.run("card", "add", "Cash Back")
	env.run("txn", "add", "Cash Back", "12.57", "Starbucks")

	out, err := env.runWithInput("n\n", "card", "delete", "Cash Back")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")
	assert.Len(t, env.state().Cards, 1)

	out, err = env.runWithInput("y\n", "card", "delete", "Cash Back")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted Cash Back and 1 purchase(s)")

	state := env.state()
	assert.Empty(t, state.Cards)
	assert.Empty(t, state.Transactions)

	out = env.run("checkpoint", "list")
	assert.Contains(t, out, "auto-delete-card")
}

func TestPurchaseFlow(t *testing.T) {
	env := newTestEnv(t)
	env.run("card", "add", "Cash Back")
	env.run("balance", "checking", "100")

	env.run("txn", "add", "Cash Back", "40", "Shell", "--date", "2025-07-30", "--note", "road trip")
	env.run("txn", "add", "Cash Back", "12.57", "Starbucks", "--date", "2025-07-28")

	out := env.run("txn", "list", "--pending")
	assert.Contains(t, out, "Shell")
	assert.Contains(t, out, "road trip")
	assert.Contains(t, out, "pending")

	state := env.state()
	require.Len(t, state.Transactions, 2)
	shell := state.Transactions[0]

	out = env.run("txn", "vault", shell.ID)
	assert.Contains(t, out, "$40.00")

	state = env.state()
	assert.True(t, decimal.NewFromInt(60).Equal(state.Checking))
	assert.True(t, decimal.NewFromInt(40).Equal(state.Vault))
	assert.True(t, state.Transactions[0].Cleared)

	out = env.run("txn", "list", "--cleared")
	assert.Contains(t, out, "Shell")
	assert.NotContains(t, out, "Starbucks")

	env.run("txn", "clear", shell.ID)
	assert.False(t, env.state().Transactions[0].Cleared)

	env.run("txn", "note", shell.ID)
	assert.Empty(t, env.state().Transactions[0].Note)

	_, err := env.runWithInput("", "txn", "add", "Cash Back", "0", "Refund")
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = env.runWithInput("", "txn", "clear", "missing")
	require.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestTransfer(t *testing.T) {
	env := newTestEnv(t)
	env.run("balance", "checking", "100")

	_, err := env.runWithInput("", "transfer", "500")
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.True(t, decimal.NewFromInt(100).Equal(env.state().Checking), "rejected transfer leaves balances alone")

	out := env.run("transfer", "75.5")
	assert.Contains(t, out, "$24.50")
	assert.Contains(t, out, "$75.50")

	env.run("transfer", "25", "--to", "checking")
	state := env.state()
	assert.True(t, decimal.RequireFromString("49.50").Equal(state.Checking))
	assert.True(t, decimal.RequireFromString("50.50").Equal(state.Vault))

	env.run("transfer", "100", "--unchecked")
	state = env.state()
	assert.True(t, decimal.RequireFromString("-50.50").Equal(state.Checking))
	assert.True(t, decimal.RequireFromString("150.50").Equal(state.Vault))

	_, err = env.runWithInput("", "transfer", "10", "--to", "savings")
	require.Error(t, err)
}

func TestSummaryAndDue(t *testing.T) {
	env := newTestEnv(t)
	env.run("card", "add", "Cash Back", "--due-day", "31")
	env.run("txn", "add", "Cash Back", "40", "Shell", "--date", "2025-02-10")
	env.run("balance", "vault", "10")

	out := env.run("summary", "--date", "2025-02-15")
	assert.Contains(t, out, "Feb 15, 2025")
	assert.Contains(t, out, "$40.00")
	assert.Contains(t, out, "$30.00", "difference between pending and vault")
	assert.Contains(t, out, "due Feb 28, 2025 (in 13 days)")

	out = env.run("due", "31", "--date", "2025-02-15")
	assert.Contains(t, out, "The 31st is next due Feb 28, 2025 (in 13 days)")

	out = env.run("due", "15", "--date", "2025-02-15")
	assert.Contains(t, out, "(today)")

	_, err := env.runWithInput("", "summary", "--date", "15/02/2025")
	require.ErrorIs(t, err, ledger.ErrInvalidDate)
}

func TestImportStatements(t *testing.T) {
	env := newTestEnv(t)
	env.run("card", "add", "Cash Back")

	csvPath := env.writeFile("july.csv", `date,merchant,amount,note
2025-07-28,Whole Foods,"$1,234.56",weekly shop
2025-07-29,Shell,52.10,
`)
	out := env.run("txn", "import-csv", "Cash Back", csvPath)
	assert.Contains(t, out, "Imported 2 purchase(s) to Cash Back")

	out = env.run("txn", "import-csv", "Cash Back", csvPath)
	assert.Contains(t, out, "Imported 0 purchase(s)")
	assert.Contains(t, out, "Skipped 2 duplicate(s)")

	ofxPath := env.writeFile("july.qfx", `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250801120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20250701120000[0:GMT]
<DTEND>20250731120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250729120000[0:GMT]
<TRNAMT>-52.10
<FITID>CC1
<NAME>Shell
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250730120000[0:GMT]
<TRNAMT>-18.40
<FITID>CC2
<NAME>LYFT *RIDE
</STMTTRN>
<STMTTRN>
<TRNTYPE>PAYMENT
<DTPOSTED>20250731120000[0:GMT]
<TRNAMT>500.00
<FITID>CC3
<NAME>PAYMENT THANK YOU
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-70.50
<DTASOF>20250731120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`)

	out = env.run("txn", "import-ofx", "Cash Back", ofxPath, "--dry-run")
	assert.Contains(t, out, "Would import 1 purchase(s)")
	assert.Len(t, env.state().Transactions, 2)

	out = env.run("txn", "import-ofx", "Cash Back", ofxPath)
	assert.Contains(t, out, "Imported 1 purchase(s)")
	assert.Contains(t, out, "Skipped 1 duplicate(s)")
	assert.Len(t, env.state().Transactions, 3)

	_, err := env.runWithInput("", "txn", "import-csv", "Cash Back", filepath.Join(env.dir, "missing-*.csv"))
	require.Error(t, err)
}

func TestExportImportAndSeed(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("seed")
	assert.Contains(t, out, "Seeded 2 card(s) and 3 purchase(s)")

	_, err := env.runWithInput("", "seed")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	require.ErrorIs(t, err, ledger.ErrLedgerNotEmpty)

	exportPath := filepath.Join(env.dir, "ledger.json")
	env.run("export", exportPath)

	out = env.run("export")
	assert.Contains(t, out, `"checkingBalance"`)
	assert.Contains(t, out, "Wells Fargo Cash Back")

	other := newTestEnv(t)
	out = other.run("import", exportPath)
	assert.Contains(t, out, "Imported 2 card(s) and 3 purchase(s)")
	assert.Equal(t, len(env.state().Transactions), len(other.state().Transactions))

	garbage := other.writeFile("garbage.json", "this is not json")
	_, err = other.runWithInput("", "import", garbage, "--yes")
	require.ErrorIs(t, err, session.ErrUnreadableImport)
	assert.Len(t, other.state().Cards, 2, "a rejected import keeps the current ledger")
}

func TestCheckpointCommands(t *testing.T) {
	env := newTestEnv(t)
	env.run("card", "add", "Cash Back")

	out := env.run("checkpoint", "create", "--tag", "before", "--description", "one card")
	assert.Contains(t, out, "Created checkpoint before")

	env.run("card", "add", "Mileage Plus")
	require.Len(t, env.state().Cards, 2)

	out = env.run("checkpoint", "list")
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "manual")

	env.run("checkpoint", "restore", "before", "--force")
	assert.Len(t, env.state().Cards, 1)

	out, err := env.runWithInput("n\n", "checkpoint", "delete", "before")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")

	env.run("checkpoint", "delete", "before", "--force")
	out = env.run("checkpoint", "list")
	for _, line := range strings.Split(out, "\n") {
		assert.False(t, strings.HasPrefix(line, "before"), "deleted checkpoint still listed: %s", line)
	}
	assert.Contains(t, out, "auto-restore", "restoring leaves an automatic checkpoint")
}

func TestFileBackend(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig(fmt.Sprintf(`logging:
  level: error
storage:
  backend: file
  dir: %s
`, filepath.Join(env.dir, "state")))

	env.run("card", "add", "Cash Back")
	out := env.run("card", "list")
	assert.Contains(t, out, "Cash Back")

	_, err := env.runWithInput("", "checkpoint", "create")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "sqlite")
	assert.FileExists(t, filepath.Join(env.dir, "state", session.DefaultKey+".json"))
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig(`storage:
  backend: postgres
ledger:
  palette: ["teal"]
`)

	_, err := env.runWithInput("", "card", "list")
	require.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "postgres")
	assert.Contains(t, err.Error(), "teal")
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	assert.Contains(t, env.run("version"), "vaultswipe dev")
}

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", common.NewUserError("friendly", assert.AnError))
	assert.Equal(t, "friendly", userMessage(err))
	assert.Equal(t, assert.AnError.Error(), userMessage(assert.AnError))
}
