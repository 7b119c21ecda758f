package qdrant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeLegalFoldsAccents(t *testing.T) {
	assert.Equal(t, tokenizeLegal("fédérale"), tokenizeLegal("federale"))
	assert.Equal(t, []string{"acces", "a", "l", "information"}, tokenizeLegal("Accès à l'information"))
	assert.Empty(t, tokenizeLegal(""))
	assert.Equal(t, []string{"section", "91"}, tokenizeLegal("Section 91!"))
}

func TestEncodeSparseDocumentBoostsSectionLabel(t *testing.T) {
	plain := encodeSparseDocument("the label term appears once", "")
	boosted := encodeSparseDocument("the label term appears once", "term")

	plainWeight := weightFor(t, plain, "term")
	boostedWeight := weightFor(t, boosted, "term")
	assert.Greater(t, boostedWeight, plainWeight)
}

func TestEncodeSparseSaturatesTermFrequency(t *testing.T) {
	once := encodeSparseDocument("record", "")
	many := encodeSparseDocument("record record record record record record", "")

	w1 := weightFor(t, once, "record")
	w6 := weightFor(t, many, "record")
	assert.Greater(t, w6, w1)
	// BM25 saturation: six repetitions are worth far less than six times one.
	assert.Less(t, w6, 6*w1)
	assert.Less(t, w6, float32(docBM25K1+1.0))
}

func TestEncodeSparseQueryMatchesDocumentTokenSpace(t *testing.T) {
	doc := encodeSparseDocument("accès aux documents", "")
	query := encodeSparseQuery("acces aux documents")
	require.NotEmpty(t, query.Indices)
	assert.Equal(t, doc.Indices, query.Indices)
}

func TestEncodeSparseEmptyInput(t *testing.T) {
	sparse := encodeSparseDocument("", "")
	assert.Empty(t, sparse.Indices)
	assert.Empty(t, sparse.Values)
}

func weightFor(t *testing.T, sparse sparseVector, token string) float32 {
	t.Helper()
	target := hashToken(token)
	for i, idx := range sparse.Indices {
		if idx == target {
			return sparse.Values[i]
		}
	}
	t.Fatalf("token %q not present in sparse vector", token)
	return 0
}
