package locale

import (
	"strings"
	"testing"
)

func TestEveryLanguageHasTheSameKeys(t *testing.T) {
	b := MustLoad(English)
	want := strings.Join(b.Keys(English), ",")
	if want == "" {
		t.Fatal("english catalog is empty")
	}
	for _, code := range []string{Russian, Ukrainian} {
		if got := strings.Join(b.Keys(code), ","); got != want {
			t.Fatalf("%s keys differ:\n got %s\nwant %s", code, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	b := MustLoad(English)
	cases := []struct {
		pref, header, want string
	}{
		{Russian, "en-US", Russian},
		{"", "ru-RU,ru;q=0.9,en;q=0.5", Russian},
		{"", "uk-UA,uk;q=0.9", Ukrainian},
		{"de", "de-DE", English},
		{"", "", English},
		{"", "not a header;;", English},
	}
	for _, tc := range cases {
		if got := b.Resolve(tc.pref, tc.header); got != tc.want {
			t.Fatalf("Resolve(%q, %q) = %q, want %q", tc.pref, tc.header, got, tc.want)
		}
	}
}

func TestDeadlineNotification(t *testing.T) {
	b := MustLoad(English)
	got := b.Printer(English).DeadlineNotification("Ship", 30)
	if got != `Task "Ship" is due in 30 minutes` {
		t.Fatalf("unexpected message %q", got)
	}
	ru := b.Printer(Russian).DeadlineNotification("Ship", 15)
	if !strings.Contains(ru, "Ship") || !strings.Contains(ru, "15") {
		t.Fatalf("russian message lost arguments: %q", ru)
	}
}

func TestValueAndLabels(t *testing.T) {
	p := MustLoad(English).Printer(English)
	if got := p.Value("high"); got != "High" {
		t.Fatalf("Value(high) = %q", got)
	}
	if got := p.Value("inProgress"); got != "In Progress" {
		t.Fatalf("Value(inProgress) = %q", got)
	}
	if got := p.Value("custom-tag"); got != "custom-tag" {
		t.Fatalf("unknown values must pass through, got %q", got)
	}
	if got := p.ChangeLabel("title"); got != "Title changed" {
		t.Fatalf("ChangeLabel(title) = %q", got)
	}
	if got := p.ChangeLabel("unknown"); got != "Changed" {
		t.Fatalf("ChangeLabel(unknown) = %q", got)
	}
}

func TestUnsupportedPrinterFallsBack(t *testing.T) {
	p := MustLoad(Russian).Printer("fr")
	if p.Language() != Russian {
		t.Fatalf("expected fallback to ru, got %s", p.Language())
	}
}
