package diagnostics_test

import (
	"bytes"
	"testing"

	"github.com/bxrne/nbodysim/internal/diagnostics"
	"github.com/stretchr/testify/assert"
)

// TEST: GIVEN a WriterSink WHEN Warn is called THEN the message is written to the underlying writer
func TestWriterSink_Warn(t *testing.T) {
	var buf bytes.Buffer
	sink := diagnostics.NewWriterSink(&buf)

	sink.Warn("something happened")

	assert.Contains(t, buf.String(), "something happened")
}

// TEST: GIVEN a DiscardSink WHEN Warn is called THEN nothing panics and nothing is observable
func TestDiscardSink_Warn_NoPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		diagnostics.DiscardSink{}.Warn("ignored")
	})
}

// TEST: GIVEN a CollectingSink WHEN several warnings are recorded THEN Messages returns them in order
func TestCollectingSink_Messages(t *testing.T) {
	sink := diagnostics.NewCollectingSink()
	sink.Warn("first")
	sink.Warn("second")

	assert.Equal(t, []string{"first", "second"}, sink.Messages())
}

// TEST: GIVEN a CollectingSink WHEN Messages is mutated by the caller THEN the sink's internal slice is unaffected
func TestCollectingSink_Messages_ReturnsCopy(t *testing.T) {
	sink := diagnostics.NewCollectingSink()
	sink.Warn("only")

	msgs := sink.Messages()
	msgs[0] = "mutated"

	assert.Equal(t, []string{"only"}, sink.Messages())
}

// TEST: GIVEN Warnf is called with a nil sink THEN it falls back to the process-wide default without panicking
func TestWarnf_NilSinkFallsBackToDefault(t *testing.T) {
	original := diagnostics.Default()
	defer diagnostics.SetDefault(original)

	collecting := diagnostics.NewCollectingSink()
	diagnostics.SetDefault(collecting)

	diagnostics.Warnf(nil, "value is %d", 42)

	assert.Equal(t, []string{"value is 42"}, collecting.Messages())
}

// TEST: GIVEN an explicit sink WHEN Warnf is called THEN it formats the message and routes to that sink, not the default
func TestWarnf_ExplicitSink(t *testing.T) {
	explicit := diagnostics.NewCollectingSink()
	diagnostics.Warnf(explicit, "entity %s missing", "e1")

	assert.Equal(t, []string{"entity e1 missing"}, explicit.Messages())
}
