package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowlistEmptyAllowsAnything(t *testing.T) {
	var a Allowlist
	assert.True(t, a.Contains("anything goes"))
}

func TestAllowlistRejectsDisallowedRune(t *testing.T) {
	a := Allowlist("ABC123")
	assert.True(t, a.Contains("A1"))
	assert.False(t, a.Contains("A1x"))
}

func TestFakeRecognizeSingleReturnsQueuedResultsInOrder(t *testing.T) {
	f := &Fake{Queue: []Result{{Text: "A1", Confidence: 0.9}, {Text: "A2", Confidence: 0.8}}}

	r1, err := f.RecognizeSingle(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "A1", r1.Text)

	r2, err := f.RecognizeSingle(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "A2", r2.Text)
}

func TestFakeRecognizeSingleReturnsZeroValueWhenQueueExhausted(t *testing.T) {
	f := &Fake{}
	r, err := f.RecognizeSingle(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, Result{}, r)
}

func TestFakeRecognizeWrapsSingleResult(t *testing.T) {
	f := &Fake{Queue: []Result{{Text: "HP100"}}}
	results, err := f.Recognize(context.Background(), nil, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "HP100", results[0].Text)
}
