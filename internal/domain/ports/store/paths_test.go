package store

import (
	"testing"
	"time"

	"fitstudio-backend/internal/domain/model"
)

func TestPathLayout(t *testing.T) {
	t.Parallel()

	p := model.Period{Month: time.February, Year: 2025}

	cases := []struct {
		got  string
		want string
	}{
		{ClientPath("11111111111").String(), "clientes/11111111111"},
		{AdminClientPath("11111111111").String(), "gestao_clientes/11111111111"},
		{EmailIndexPath("ana@example.com").String(), "indices_email/ana@example.com"},
		{AdminEmailIndexPath("ana@example.com").String(), "gestao_indices_email/ana@example.com"},
		{Plans().Doc("abc").String(), "planos/abc"},
		{SubscriptionPath(p, "s1").String(), "assinaturas/02-2025/itens/s1"},
		{ReceivablePath(p, "11111111111").String(), "receitas/02-2025/itens/11111111111"},
		{ExpensePath(p, "e1").String(), "despesas/02-2025/itens/e1"},
		{AssessmentPath("11111111111", "a1").String(), "avaliacoes/11111111111/itens/a1"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("path = %q, want %q", tc.got, tc.want)
		}
	}
}

func TestPathParentAndID(t *testing.T) {
	t.Parallel()

	p := model.Period{Month: time.February, Year: 2025}
	doc := ReceivablePath(p, "11111111111")
	if doc.ID() != "11111111111" {
		t.Fatalf("id = %q", doc.ID())
	}
	if doc.Parent().String() != "receitas/02-2025/itens" {
		t.Fatalf("parent = %q", doc.Parent().String())
	}
}

// The period key uses "-", so the display separator can never produce a
// malformed path; free-form ids are sanitized.
func TestPathSanitize(t *testing.T) {
	t.Parallel()

	if got := Plans().Doc("a/b").String(); got != "planos/a_b" {
		t.Fatalf("path = %q, want planos/a_b", got)
	}
}
