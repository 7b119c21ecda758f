package usecase

import (
	"testing"

	"github.com/openparl/legisearch/internal/core/domain"
)

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		query string
		want  domain.Language
	}{
		{"What does section 4 of the Access to Information Act say?", domain.LanguageEN},
		{"Quelle est la définition d'institution fédérale dans la loi?", domain.LanguageFR},
		{"Qui peut demander des documents sous la présente loi?", domain.LanguageFR},
		{"How are schedules amended under the Act?", domain.LanguageEN},
		// Accented characters alone tip the balance.
		{"dérogation", domain.LanguageFR},
		// Ambiguity falls back to English.
		{"", domain.LanguageEN},
		{"section 91", domain.LanguageEN},
	}
	for _, tc := range cases {
		if got := detectLanguage(tc.query); got != tc.want {
			t.Fatalf("detectLanguage(%q) = %s, want %s", tc.query, got, tc.want)
		}
	}
}
