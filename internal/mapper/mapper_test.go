package mapper

import (
	"testing"
	"time"

	"ledgerunify/internal/ledgererror"
	"ledgerunify/internal/logging"
	"ledgerunify/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMappingValidate(t *testing.T) {
	tests := []struct {
		name    string
		mapping FieldMapping
		wantErr string
	}{
		{
			name: "valid single amount column",
			mapping: FieldMapping{
				Platform:  models.PlatformAlipay,
				Timestamp: FieldBinding{Column: "交易时间"},
				Amount:    AmountBinding{Column: "金额"},
			},
		},
		{
			name: "valid credit/debit pair",
			mapping: FieldMapping{
				Platform:  models.PlatformBankCMB,
				Timestamp: FieldBinding{Column: "Date"},
				Amount:    AmountBinding{CreditColumn: "Credit", DebitColumn: "Debit"},
			},
		},
		{
			name: "valid direction column",
			mapping: FieldMapping{
				Platform:  models.PlatformWeChat,
				Timestamp: FieldBinding{Column: "时间"},
				Amount: AmountBinding{
					Column:        "金额",
					DirectionCol:  "收/支",
					ExpenseValues: []string{"支出"},
				},
			},
		},
		{
			name: "missing platform",
			mapping: FieldMapping{
				Timestamp: FieldBinding{Column: "Date"},
				Amount:    AmountBinding{Column: "Amount"},
			},
			wantErr: "platform is required",
		},
		{
			name: "missing timestamp binding",
			mapping: FieldMapping{
				Platform: models.PlatformGeneric,
				Amount:   AmountBinding{Column: "Amount"},
			},
			wantErr: "timestamp binding is required",
		},
		{
			name: "missing amount binding",
			mapping: FieldMapping{
				Platform:  models.PlatformGeneric,
				Timestamp: FieldBinding{Column: "Date"},
			},
			wantErr: "amount binding is required",
		},
		{
			name: "single column and split pair together",
			mapping: FieldMapping{
				Platform:  models.PlatformGeneric,
				Timestamp: FieldBinding{Column: "Date"},
				Amount:    AmountBinding{Column: "Amount", CreditColumn: "Credit"},
			},
			wantErr: "not both",
		},
		{
			name: "direction column without expense values",
			mapping: FieldMapping{
				Platform:  models.PlatformGeneric,
				Timestamp: FieldBinding{Column: "Date"},
				Amount:    AmountBinding{Column: "Amount", DirectionCol: "Type"},
			},
			wantErr: "requires expense_values",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mapping.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMapRow_DirectionColumn(t *testing.T) {
	mapping := FieldMapping{
		Platform:  models.PlatformAlipay,
		Timestamp: FieldBinding{Column: "交易时间"},
		Amount: AmountBinding{
			Column:        "金额",
			DirectionCol:  "收/支",
			ExpenseValues: []string{"支出"},
		},
		Counterparty:    FieldBinding{Column: "交易对方"},
		Description:     FieldBinding{Column: "商品说明"},
		ReferenceNumber: FieldBinding{Column: "交易订单号"},
	}

	tests := []struct {
		name      string
		row       RawRow
		expected  string
		isExpense bool
	}{
		{
			name: "expense direction forces negative",
			row: RawRow{
				"交易时间": "2024-01-05 10:00:00",
				"金额":   "¥25.50",
				"收/支":  "支出",
				"交易对方": "Starbucks Coffee",
			},
			expected:  "-25.5",
			isExpense: true,
		},
		{
			name: "income direction stays positive",
			row: RawRow{
				"交易时间": "2024-01-05 10:00:00",
				"金额":   "100.00",
				"收/支":  "收入",
				"交易对方": "ACME Corp",
			},
			expected: "100",
		},
		{
			name: "expense direction on already-negative source value",
			row: RawRow{
				"交易时间": "2024-01-05 10:00:00",
				"金额":   "-25.50",
				"收/支":  "支出",
				"交易对方": "Starbucks Coffee",
			},
			expected:  "-25.5",
			isExpense: true,
		},
	}

	m := New(&logging.MockLogger{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := m.MapRow(0, tt.row, mapping)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tx.Amount.String())
			assert.Equal(t, tt.isExpense, tx.IsExpense())
			assert.Equal(t, models.PlatformAlipay, tx.SourcePlatform)
			assert.NotEmpty(t, tx.ID)
		})
	}
}

func TestMapRow_SplitAmountColumns(t *testing.T) {
	mapping := FieldMapping{
		Platform:     models.PlatformBankCMB,
		Timestamp:    FieldBinding{Column: "Date"},
		Amount:       AmountBinding{CreditColumn: "Credit", DebitColumn: "Debit"},
		Counterparty: FieldBinding{Column: "Payee"},
		BalanceAfter: FieldBinding{Column: "Balance"},
	}

	m := New(&logging.MockLogger{})

	t.Run("debit column yields a negative amount", func(t *testing.T) {
		tx, err := m.MapRow(0, RawRow{
			"Date":    "2024-01-05",
			"Debit":   "50.00",
			"Payee":   "Metro",
			"Balance": "1,200.00",
		}, mapping)
		require.NoError(t, err)
		assert.Equal(t, "-50", tx.Amount.String())
		require.NotNil(t, tx.BalanceAfter)
		assert.True(t, tx.BalanceAfter.Equal(decimal.RequireFromString("1200")))
	})

	t.Run("credit column yields a positive amount", func(t *testing.T) {
		tx, err := m.MapRow(0, RawRow{
			"Date":   "2024-01-05",
			"Credit": "3000.00",
			"Payee":  "Employer",
		}, mapping)
		require.NoError(t, err)
		assert.Equal(t, "3000", tx.Amount.String())
		assert.Nil(t, tx.BalanceAfter)
	})

	t.Run("both columns empty is a mapping error", func(t *testing.T) {
		_, err := m.MapRow(3, RawRow{"Date": "2024-01-05", "Payee": "Metro"}, mapping)
		var mapErr *ledgererror.MappingError
		require.ErrorAs(t, err, &mapErr)
		assert.Equal(t, 3, mapErr.RowIndex)
		assert.Equal(t, "amount", mapErr.Field)
	})

	t.Run("unparseable balance is dropped, not fatal", func(t *testing.T) {
		tx, err := m.MapRow(0, RawRow{
			"Date":    "2024-01-05",
			"Debit":   "50.00",
			"Payee":   "Metro",
			"Balance": "n/a",
		}, mapping)
		require.NoError(t, err)
		assert.Nil(t, tx.BalanceAfter)
	})
}

func TestMapRow_ConstantBinding(t *testing.T) {
	mapping := FieldMapping{
		Platform:   models.PlatformBankICBC,
		Timestamp:  FieldBinding{Column: "Date"},
		Amount:     AmountBinding{Column: "Amount"},
		AccountRef: FieldBinding{Constant: "savings-001"},
	}

	tx, err := New(&logging.MockLogger{}).MapRow(0, RawRow{
		"Date":   "2024-01-05",
		"Amount": "-12.00",
	}, mapping)
	require.NoError(t, err)
	assert.Equal(t, "savings-001", tx.AccountRef)
}

func TestMapRow_TimestampErrors(t *testing.T) {
	mapping := FieldMapping{
		Platform:  models.PlatformGeneric,
		Timestamp: FieldBinding{Column: "Date"},
		Amount:    AmountBinding{Column: "Amount"},
	}
	m := New(&logging.MockLogger{})

	t.Run("empty timestamp is a mapping error with the row index", func(t *testing.T) {
		_, err := m.MapRow(7, RawRow{"Amount": "5.00"}, mapping)
		var mapErr *ledgererror.MappingError
		require.ErrorAs(t, err, &mapErr)
		assert.Equal(t, 7, mapErr.RowIndex)
		assert.Equal(t, "timestamp", mapErr.Field)
	})

	t.Run("unparseable timestamp surfaces as a time parse error", func(t *testing.T) {
		_, err := m.MapRow(0, RawRow{"Date": "yesterday", "Amount": "5.00"}, mapping)
		var parseErr *ledgererror.TimeParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "yesterday", parseErr.Raw)
	})
}

func TestMapRows_RowFailuresDoNotAbortSiblings(t *testing.T) {
	mapping := FieldMapping{
		Platform:     models.PlatformGeneric,
		Timestamp:    FieldBinding{Column: "Date"},
		Amount:       AmountBinding{Column: "Amount"},
		Counterparty: FieldBinding{Column: "Payee"},
	}

	rows := []RawRow{
		{"Date": "2024-01-05 10:00:00", "Amount": "-25.50", "Payee": "Starbucks"},
		{"Date": "", "Amount": "-3.00", "Payee": "Metro"},
		{"Date": "2024-01-05 12:00:00", "Amount": "not-a-number", "Payee": "Metro"},
		{"Date": "2024-01-06 09:00:00", "Amount": "3000.00", "Payee": "Employer"},
	}

	log := &logging.MockLogger{}
	transactions, errs := New(log).MapRows(rows, mapping)

	require.Len(t, transactions, 2)
	require.Len(t, errs, 2)
	assert.Equal(t, "Starbucks", transactions[0].Counterparty)
	assert.Equal(t, "Employer", transactions[1].Counterparty)
	assert.True(t, log.HasEntry("WARN", "Failed to map statement row"))

	expected := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	assert.True(t, expected.Equal(transactions[0].Timestamp))
}

func TestMapRow_DerivedIDIsStable(t *testing.T) {
	mapping := FieldMapping{
		Platform:        models.PlatformAlipay,
		Timestamp:       FieldBinding{Column: "Date"},
		Amount:          AmountBinding{Column: "Amount"},
		ReferenceNumber: FieldBinding{Column: "Ref"},
	}
	row := RawRow{"Date": "2024-01-05 10:00:00", "Amount": "-25.50", "Ref": "2024010522001"}

	m := New(&logging.MockLogger{})
	first, err := m.MapRow(0, row, mapping)
	require.NoError(t, err)
	second, err := m.MapRow(0, row, mapping)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}
