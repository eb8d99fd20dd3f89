package snapshot

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleState() model.State {
	bal := dec("300.25")
	return model.State{
		Balances: model.Balances{Checking: dec("2187.04"), Vault: dec("150")},
		Cards: []model.Card{
			{ID: "c1", Name: "Wells Fargo Cash Back", Color: "#0F766E", DueDay: 15},
			{ID: "c2", Name: "United Mileage Plus", Color: "#1D4ED8", DueDay: 31, CurrentBalance: &bal},
		},
		Transactions: []model.Transaction{
			{ID: "t1", CardID: "c1", Date: civil.Date{Year: 2025, Month: time.July, Day: 30}, Merchant: "Starbucks", Amount: dec("12.57")},
			{ID: "t2", CardID: "c1", Date: civil.Date{Year: 2025, Month: time.July, Day: 29}, Merchant: "Amazon", Amount: dec("40"), Note: "Waiting for refund"},
			{ID: "t3", CardID: "c2", Date: civil.Date{Year: 2025, Month: time.July, Day: 28}, Merchant: "Lyft", Amount: dec("18.4"), Cleared: true},
		},
	}
}

// assertStateEqual compares states using decimal equality.
func assertStateEqual(t *testing.T, want, got model.State) {
	t.Helper()
	assert.True(t, want.Checking.Equal(got.Checking), "checking %s != %s", want.Checking, got.Checking)
	assert.True(t, want.Vault.Equal(got.Vault), "vault %s != %s", want.Vault, got.Vault)

	require.Len(t, got.Cards, len(want.Cards))
	for i := range want.Cards {
		w, g := want.Cards[i], got.Cards[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.Name, g.Name)
		assert.Equal(t, w.Color, g.Color)
		assert.Equal(t, w.DueDay, g.DueDay)
		if w.CurrentBalance == nil {
			assert.Nil(t, g.CurrentBalance)
		} else if assert.NotNil(t, g.CurrentBalance) {
			assert.True(t, w.CurrentBalance.Equal(*g.CurrentBalance))
		}
	}

	require.Len(t, got.Transactions, len(want.Transactions))
	for i := range want.Transactions {
		w, g := want.Transactions[i], got.Transactions[i]
		assert.True(t, w.Amount.Equal(g.Amount), "amount %s != %s", w.Amount, g.Amount)
		w.Amount, g.Amount = decimal.Zero, decimal.Zero
		assert.Equal(t, w, g)
	}
}

func TestRoundTrip(t *testing.T) {
	want := sampleState()

	data, err := Encode(want)
	require.NoError(t, err)

	got, report := Decode(data)
	assert.True(t, report.Clean(), "warnings: %v", report.Warnings)
	assertStateEqual(t, want, got)
}

func TestRoundTrip_EmptyState(t *testing.T) {
	data, err := Encode(model.State{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"checkingBalance":0,"vaultBalance":0,"cards":[],"transactions":[]}`, string(data))

	got, report := Decode(data)
	assert.True(t, report.Clean())
	assert.Empty(t, got.Cards)
	assert.Empty(t, got.Transactions)
}

func TestEncode_WireFormat(t *testing.T) {
	data, err := Encode(sampleState())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.InDelta(t, 2187.04, doc["checkingBalance"], 1e-9, "amounts are JSON numbers")

	cards := doc["cards"].([]any)
	first := cards[0].(map[string]any)
	assert.NotContains(t, first, "currentBalance", "unset balance is omitted")
	second := cards[1].(map[string]any)
	assert.InDelta(t, 300.25, second["currentBalance"], 1e-9)

	txn := doc["transactions"].([]any)[0].(map[string]any)
	assert.Equal(t, "2025-07-30", txn["date"])
	assert.Equal(t, "c1", txn["cardId"])
	assert.Equal(t, false, txn["cleared"])
}

func TestDecode_Corrupt(t *testing.T) {
	inputs := []string{"", "not json", "{", "[1,2,3]", `"text"`, "null"}
	for _, in := range inputs {
		got, report := Decode([]byte(in))
		assert.True(t, report.Corrupt, "input %q", in)
		assert.Empty(t, got.Cards)
		assert.Empty(t, got.Transactions)
		assert.True(t, got.Checking.IsZero())
	}
}

func TestDecode_FieldsFallBackIndependently(t *testing.T) {
	tests := []struct {
		name         string
		doc          string
		wantChecking string
		wantCards    int
		wantTxns     int
		wantWarnings int
		check        func(t *testing.T, got model.State, report Report)
	}{
		{
			name:         "prototype document without vault",
			doc:          `{"checkingBalance":"2187.04","cards":[{"id":"c1","name":"A","color":"#0F766E"}],"txns":[{"id":"t1","cardId":"c1","date":"2025-07-30","merchant":"Starbucks","amount":12.57,"note":"","cleared":false}]}`,
			wantChecking: "2187.04", wantCards: 1, wantTxns: 1,
		},
		{
			name:         "malformed balance keeps the rest",
			doc:          `{"checkingBalance":{"x":1},"cards":[{"id":"c1","name":"A"}],"transactions":[]}`,
			wantChecking: "0", wantCards: 1, wantWarnings: 1,
		},
		{
			name:         "malformed cards keeps balances",
			doc:          `{"checkingBalance":10,"cards":"oops","transactions":[{"id":"t1","cardId":"c1","date":"2025-07-30","amount":"5"}]}`,
			wantChecking: "10", wantTxns: 1, wantWarnings: 1,
		},
		{
			name:         "malformed transactions keeps cards",
			doc:          `{"checkingBalance":10,"cards":[{"id":"c1","name":"A"}],"transactions":{"t1":{}}}`,
			wantChecking: "10", wantCards: 1, wantWarnings: 1,
		},
		{
			name:         "bad entries are skipped",
			doc:          `{"cards":[{"id":"c1","name":"A"},{"name":"no id"},42,{"id":"c1","name":"dup"}],"transactions":[{"id":"t1","cardId":"c1","date":"07/30/2025","amount":1},{"id":"t2","cardId":"c1","date":"2025-07-30","amount":"abc"},{"id":"t3","cardId":"c1","date":"2025-07-30","amount":-1},{"id":"t4","cardId":"c1","date":"2025-07-30","amount":3}]}`,
			wantChecking: "0", wantCards: 1, wantTxns: 1, wantWarnings: 6,
		},
		{
			name:         "null and empty string balances",
			doc:          `{"checkingBalance":"","vaultBalance":null}`,
			wantChecking: "0",
		},
		{
			name:         "non-numeric due day falls back to the first",
			doc:          `{"cards":[{"id":"c1","name":"A","dueDay":"abc"},{"id":"c2","name":"B","dueDay":true}]}`,
			wantChecking: "0", wantCards: 2, wantWarnings: 2,
			check: func(t *testing.T, got model.State, report Report) {
				assert.Equal(t, 1, got.Cards[0].DueDay)
				assert.Equal(t, 1, got.Cards[1].DueDay)
				assert.Contains(t, report.Warnings[0], "cards[0].dueDay")
				assert.Contains(t, report.Warnings[1], "cards[1].dueDay")
			},
		},
		{
			name:         "cleared that is not a boolean",
			doc:          `{"transactions":[{"id":"t1","cardId":"c1","date":"2025-07-30","amount":1,"cleared":"true"},{"id":"t2","cardId":"c1","date":"2025-07-30","amount":2,"cleared":"yes"},{"id":"t3","cardId":"c1","date":"2025-07-30","amount":3,"cleared":1}]}`,
			wantChecking: "0", wantTxns: 3, wantWarnings: 3,
			check: func(t *testing.T, got model.State, report Report) {
				assert.True(t, got.Transactions[0].Cleared)
				assert.False(t, got.Transactions[1].Cleared)
				assert.False(t, got.Transactions[2].Cleared)
				assert.Contains(t, report.Warnings[0], "transactions[0].cleared")
				assert.Contains(t, report.Warnings[1], "transactions[1].cleared")
				assert.Contains(t, report.Warnings[2], "transactions[2].cleared")
			},
		},
		{
			name:         "text fields that are not strings",
			doc:          `{"cards":[{"id":"c1","name":"A","color":7}],"transactions":[{"id":"t1","cardId":"c1","date":"2025-07-30","amount":1,"merchant":["x"],"note":null}]}`,
			wantChecking: "0", wantCards: 1, wantTxns: 1, wantWarnings: 2,
			check: func(t *testing.T, got model.State, report Report) {
				assert.Empty(t, got.Cards[0].Color)
				assert.Empty(t, got.Transactions[0].Merchant)
				assert.Contains(t, report.Warnings[0], "cards[0].color")
				assert.Contains(t, report.Warnings[1], "transactions[0].merchant")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, report := Decode([]byte(tt.doc))
			assert.False(t, report.Corrupt)
			assert.Len(t, report.Warnings, tt.wantWarnings, "warnings: %v", report.Warnings)
			assert.True(t, got.Checking.Equal(dec(tt.wantChecking)), "checking = %s", got.Checking)
			assert.Len(t, got.Cards, tt.wantCards)
			assert.Len(t, got.Transactions, tt.wantTxns)
			assert.Equal(t, tt.wantWarnings == 0, report.Clean())
			if tt.check != nil {
				tt.check(t, got, report)
			}
		})
	}
}

func TestDecode_DueDayIsSanitized(t *testing.T) {
	doc := `{"cards":[
		{"id":"a","name":"A","dueDay":0},
		{"id":"b","name":"B","dueDay":45},
		{"id":"c","name":"C","dueDay":"12"},
		{"id":"d","name":"D","dueDay":"soon"},
		{"id":"e","name":"E"},
		{"id":"f","name":"F","dueDay":14.5}
	]}`

	got, report := Decode([]byte(doc))
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], `cards[3].dueDay: "soon" is not a number`)

	want := []int{1, 31, 12, 1, 1, 15}
	require.Len(t, got.Cards, len(want))
	for i, c := range got.Cards {
		assert.Equal(t, want[i], c.DueDay, "card %s", c.ID)
	}
}

func TestDecode_TransactionsKeyWinsOverLegacy(t *testing.T) {
	doc := `{"transactions":[{"id":"new","cardId":"c1","date":"2025-07-30","amount":1}],
		"txns":[{"id":"old","cardId":"c1","date":"2025-07-30","amount":1}]}`

	got, _ := Decode([]byte(doc))
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "new", got.Transactions[0].ID)
}

func TestDecode_KeepsOrphanTransactions(t *testing.T) {
	doc := `{"cards":[],"transactions":[{"id":"t1","cardId":"gone","date":"2025-07-30","amount":9.99}]}`

	got, report := Decode([]byte(doc))
	assert.True(t, report.Clean())
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "gone", got.Transactions[0].CardID)
}
