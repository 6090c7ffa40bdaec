package ui

import (
	"strings"
	"testing"

	"github.com/complytools/cacsync/internal/sync"
)

func TestStatusFunctions(t *testing.T) {
	// Disable colors for consistent test output
	DisableColors()
	defer EnableColors()

	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"StatusSuccess empty", StatusSuccess, "", SymbolSuccess},
		{"StatusSuccess with msg", StatusSuccess, "done", SymbolSuccess + " done"},
		{"StatusError empty", StatusError, "", SymbolError},
		{"StatusError with msg", StatusError, "failed", SymbolError + " failed"},
		{"StatusWarning empty", StatusWarning, "", SymbolWarning},
		{"StatusWarning with msg", StatusWarning, "caution", SymbolWarning + " caution"},
		{"StatusSkipped empty", StatusSkipped, "", SymbolSkipped},
		{"StatusSkipped with msg", StatusSkipped, "skip", SymbolSkipped + " skip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColorToggle(t *testing.T) {
	initial := IsColorEnabled()

	DisableColors()
	if IsColorEnabled() {
		t.Error("expected colors to be disabled")
	}

	EnableColors()
	if !IsColorEnabled() {
		t.Error("expected colors to be enabled")
	}

	if !initial {
		DisableColors()
	}
}

func TestPrintResult(t *testing.T) {
	DisableColors()
	defer EnableColors()

	result := &sync.Result{
		Task:    "sync-component-definition",
		Product: "rhel",
		Profile: "example",
	}
	result.Findings = []sync.Finding{
		{Kind: sync.FindingRuleAdded, Control: "AC-2", Subject: "configure_crypto_policy"},
		{Kind: sync.FindingRuleAdded, Control: "AC-3", Subject: "other_rule"},
		{Kind: sync.FindingRuleMissing, Control: "AC-2", Subject: "not_exist_rule_id"},
	}

	var b strings.Builder
	PrintResult(&b, result)
	out := b.String()

	for _, want := range []string{
		"sync-component-definition",
		"product: rhel",
		"profile: example",
		"rule-added: 2",
		"needs attention:",
		"not_exist_rule_id",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintResultNoChanges(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	PrintResult(&b, &sync.Result{Task: "sync-catalog", Policy: "abcd-levels"})

	if !strings.Contains(b.String(), "nothing to sync") {
		t.Errorf("output = %q, want nothing-to-sync notice", b.String())
	}
}
