package usecase

import (
	"strings"
	"unicode"

	"github.com/openparl/legisearch/internal/core/domain"
)

var frenchStopwords = map[string]struct{}{
	"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "des": {}, "du": {},
	"est": {}, "que": {}, "qui": {}, "quoi": {}, "quel": {}, "quelle": {},
	"pour": {}, "dans": {}, "sur": {}, "avec": {}, "sans": {}, "sous": {},
	"loi": {}, "lois": {}, "article": {}, "paragraphe": {}, "annexe": {},
	"comment": {}, "pourquoi": {}, "peut": {}, "doit": {}, "sont": {},
}

var englishStopwords = map[string]struct{}{
	"the": {}, "of": {}, "and": {}, "a": {}, "an": {}, "is": {}, "are": {},
	"what": {}, "which": {}, "who": {}, "how": {}, "why": {}, "can": {},
	"for": {}, "in": {}, "on": {}, "with": {}, "under": {}, "to": {},
	"act": {}, "section": {}, "subsection": {}, "schedule": {}, "must": {},
}

// detectLanguage guesses the query language from diacritic and stopword
// signals. It never fails: ambiguity falls back to English.
func detectLanguage(query string) domain.Language {
	frScore := 0
	enScore := 0

	for _, r := range query {
		if isFrenchDiacritic(r) {
			frScore += 2
		}
	}
	for _, token := range strings.Fields(strings.ToLower(query)) {
		token = strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if _, ok := frenchStopwords[token]; ok {
			frScore++
		}
		if _, ok := englishStopwords[token]; ok {
			enScore++
		}
	}

	if frScore > enScore {
		return domain.LanguageFR
	}
	return domain.LanguageEN
}

func isFrenchDiacritic(r rune) bool {
	switch unicode.ToLower(r) {
	case 'à', 'â', 'ç', 'é', 'è', 'ê', 'ë', 'î', 'ï', 'ô', 'ù', 'û', 'ü', 'ÿ', 'œ', 'æ':
		return true
	}
	return false
}
