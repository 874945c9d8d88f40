package jsonx

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadingDecimal(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "99.50", want: "99.5", wantOK: true},
		{in: "120", want: "120", wantOK: true},
		{in: "  42", want: "42", wantOK: true},
		{in: "12abc", want: "12", wantOK: true},
		{in: ".5", want: "0.5", wantOK: true},
		{in: "5.", want: "5", wantOK: true},
		{in: "1e2", want: "100", wantOK: true},
		{in: "3e", want: "3", wantOK: true},
		{in: "-7.25", want: "-7.25", wantOK: true},
		{in: "abc", want: "0"},
		{in: "", want: "0"},
		{in: ".", want: "0"},
		{in: "-", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := LeadingDecimal(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
				"expected %s, got %s", tt.want, got)
		})
	}
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{in: `7`, want: "7"},
		{in: `7.0`, want: "7"},
		{in: `"abc-1"`, want: "abc-1"},
		{in: `null`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad ID
	require.Error(t, json.Unmarshal([]byte(`{}`), &bad))
}

func TestID_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		ID ID `json:"id"`
	}{ID: "42"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42"}`, string(out))
}
