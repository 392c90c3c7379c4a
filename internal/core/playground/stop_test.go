package playground_test

import (
	"encoding/json"
	"strings"
	"testing"

	"prompt-playground/internal/core/ai/provider"
	"prompt-playground/internal/core/playground"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStopSequences(t *testing.T) {
	got := playground.ParseStopSequences("Limited,  time , , offer")
	assert.Equal(t, []string{"Limited", "time", "offer"}, got)
}

func TestParseStopSequences_AbsentWhenEmpty(t *testing.T) {
	for _, raw := range []string{"", ",  ,", "   ", ",", "\t,\n"} {
		got := playground.ParseStopSequences(raw)
		assert.Nil(t, got, "raw %q", raw)
	}
}

func TestParseStopSequences_KeepsOrderAndDuplicates(t *testing.T) {
	got := playground.ParseStopSequences("END, stop ,END,,###")
	assert.Equal(t, []string{"END", "stop", "END", "###"}, got)
}

func TestParseStopSequences_NoBlankEntries(t *testing.T) {
	inputs := []string{"a,,b", " , a , ", "x", ",,,y,,,", "one two, three"}
	for _, raw := range inputs {
		got := playground.ParseStopSequences(raw)
		var want []string
		for _, seg := range strings.Split(raw, ",") {
			if s := strings.TrimSpace(seg); s != "" {
				want = append(want, s)
			}
		}
		assert.Equal(t, want, got, "raw %q", raw)
		for _, s := range got {
			assert.NotEmpty(t, strings.TrimSpace(s))
		}
	}
}

func TestStopOmittedFromWireWhenAbsent(t *testing.T) {
	req := provider.Request{
		Model:    "gpt-4",
		Messages: playground.BuildMessages("", "hi"),
		Stop:     playground.ParseStopSequences(" , "),
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.NotContains(t, body, "stop")
	// zero-valued sampling parameters are still sent
	assert.Contains(t, body, "temperature")
	assert.Contains(t, body, "presence_penalty")
	assert.Contains(t, body, "frequency_penalty")
}
