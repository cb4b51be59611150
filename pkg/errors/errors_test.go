package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "title only",
			err:  ResourceLimit("Too many combinations", ""),
			want: "Too many combinations",
		},
		{
			name: "with span",
			err:  Syntax("Invalid amino acid", "not a residue code", Span("PEP!IDE", 3, 1)),
			want: `Invalid amino acid: not a residue code (at 3 "!")`,
		},
		{
			name: "with cause",
			err:  Semantic("Invalid formula", "bad element", Full("Xx2")).WithCause(io.EOF),
			want: `Invalid formula: bad element (at 0 "Xx2"): EOF`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindSentinels(t *testing.T) {
	err := fmt.Errorf("line 3: %w", Syntax("Invalid", "x", Context{}))

	assert.ErrorIs(t, err, ErrSyntax)
	assert.NotErrorIs(t, err, ErrSemantic)
	assert.Equal(t, KindSyntax, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(io.EOF))
	assert.False(t, errors.Is(ErrSyntax, ErrResourceLimit))

	wrapped := Semantic("Invalid", "x", Context{}).WithCause(io.EOF)
	assert.ErrorIs(t, wrapped, io.EOF)
	assert.ErrorIs(t, wrapped, ErrSemantic)
}

func TestContext(t *testing.T) {
	c := Span("ACDE", 1, 2)
	assert.Equal(t, "CD", c.Fragment())
	assert.Equal(t, "", Span("AC", 5, 1).Fragment())
	assert.Equal(t, "E", Span("ACDE", 3, 10).Fragment())

	moved := Syntax("Invalid", "", Span("CD", 0, 1)).Relocate("ACDE", 2)
	assert.Equal(t, "D", moved.Context.Fragment())
	assert.Equal(t, "invalid input", KindSemantic.String())
}
