package core

import "testing"

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Balance.Cents != 0 || s.IncomeTotal.Cents != 0 || s.ExpenseTotal.Cents != 0 {
		t.Fatalf("empty list should yield exact zeros, got %+v", s)
	}
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{Amount: Money{Cents: 10000}, Type: Income},  // 100.00
		{Amount: Money{Cents: 4000}, Type: Expense},  // 40.00
		{Amount: Money{Cents: 2500}, Type: Expense},  // 25.00
	}
	s := Summarize(txs)
	if s.IncomeTotal.Cents != 10000 {
		t.Fatalf("income = %d", s.IncomeTotal.Cents)
	}
	if s.ExpenseTotal.Cents != 6500 {
		t.Fatalf("expense = %d", s.ExpenseTotal.Cents)
	}
	if s.Balance.Cents != 3500 {
		t.Fatalf("balance = %d", s.Balance.Cents)
	}
	// balance == income - expense, always
	if s.Balance.Cents != s.IncomeTotal.Cents-s.ExpenseTotal.Cents {
		t.Fatalf("balance identity violated: %+v", s)
	}
}

func TestSummarizeNegativeBalance(t *testing.T) {
	txs := []Transaction{
		{Amount: Money{Cents: 1000}, Type: Income},
		{Amount: Money{Cents: 2500}, Type: Expense},
	}
	s := Summarize(txs)
	if s.Balance.Cents != -1500 {
		t.Fatalf("balance = %d, want -1500", s.Balance.Cents)
	}
}
