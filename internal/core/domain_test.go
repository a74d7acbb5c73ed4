package core

import "testing"

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-05", true},
		{" 2024-12-31 ", true},
		{"2024-13-01", false},
		{"05/01/2024", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err != ErrInvalidDate {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	tx := Transaction{ID: 1, Date: "2024-01-05", Category: "Food", Amount: NewAmount(-12.5)}
	cases := []struct {
		name string
		f    Filter
		want bool
	}{
		{"empty filter", Filter{}, true},
		{"category case-insensitive", Filter{Category: "food"}, true},
		{"category mismatch", Filter{Category: "Pay"}, false},
		{"start bound inclusive", Filter{StartDate: "2024-01-05"}, true},
		{"after start", Filter{StartDate: "2024-01-06"}, false},
		{"end bound inclusive", Filter{EndDate: "2024-01-05"}, true},
		{"before end", Filter{EndDate: "2024-01-04"}, false},
		{"unparsable bound ignored", Filter{StartDate: "garbage"}, true},
	}
	for _, tc := range cases {
		if got := tc.f.Matches(tx); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPeriodMatches(t *testing.T) {
	tx := Transaction{Date: "2024-03-10"}
	cases := []struct {
		p    Period
		want bool
	}{
		{Period{}, true},
		{Period{Year: "2024"}, true},
		{Period{Year: "2023"}, false},
		{Period{Year: "2024", Month: "3"}, true},
		{Period{Month: "4"}, false},
		{Period{Month: "march"}, true},
	}
	for i, tc := range cases {
		if got := tc.p.Matches(tx); got != tc.want {
			t.Fatalf("case %d: got %v, want %v", i, got, tc.want)
		}
	}
}

func TestTransactionPatchApply(t *testing.T) {
	tx := Transaction{ID: 7, Date: "2024-01-01", Category: "Food", Description: "Lunch", Amount: NewAmount(10)}
	desc := "Dinner"
	got, err := TransactionPatch{Description: &desc}.Apply(tx)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.Description != "Dinner" || got.Category != "Food" || got.ID != 7 {
		t.Fatalf("unexpected patch result: %+v", got)
	}

	bad := "2024/01/01"
	if _, err := (TransactionPatch{Date: &bad}).Apply(tx); err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}
