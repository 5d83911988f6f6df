package viewmodel

import (
	"reflect"
	"testing"
)

func clientFields(c ClientRow) []string {
	return []string{c.Name, c.Phone, c.CPF}
}

func TestFilterEmptyQueryReturnsAll(t *testing.T) {
	rows := []ClientRow{
		{ID: 1, Name: "Maria Silva"},
		{ID: 2, Name: "João Souza"},
	}
	got := Filter("", rows, clientFields)
	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("empty query should return input unchanged, got %+v", got)
	}
	got = Filter("   ", rows, clientFields)
	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("blank query should return input unchanged, got %+v", got)
	}
}

func TestFilterSubstringMatch(t *testing.T) {
	rows := []ClientRow{
		{ID: 1, Name: "Maria Silva", Phone: "11999998888"},
		{ID: 2, Name: "João Souza", Phone: "21988887777"},
		{ID: 3, Name: "Pedro Lima", CPF: "12345678901"},
	}

	got := Filter("silva", rows, clientFields)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only Maria, got %+v", got)
	}

	// Substring of a field always matches its row.
	got = Filter("8888", rows, clientFields)
	if len(got) != 2 {
		t.Fatalf("expected phone matches for rows 1 and 2, got %+v", got)
	}

	got = Filter("MARIA", rows, clientFields)
	if len(got) != 1 {
		t.Fatalf("matching must be case-insensitive, got %+v", got)
	}

	got = Filter("nomatch", rows, clientFields)
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %+v", got)
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	rows := []ClientRow{
		{ID: 3, Name: "ana b"},
		{ID: 1, Name: "ana a"},
		{ID: 2, Name: "ana c"},
	}
	got := Filter("ana", rows, clientFields)
	if len(got) != 3 || got[0].ID != 3 || got[1].ID != 1 || got[2].ID != 2 {
		t.Fatalf("filter must keep input order, got %+v", got)
	}
}
