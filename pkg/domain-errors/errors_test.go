package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesCode(t *testing.T) {
	err := New(CodeBadRequest, "empty query")

	assert.True(t, Is(err, CodeBadRequest))
	assert.False(t, Is(err, CodeInternal))
}

func TestIs_SeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("search: %w", New(CodeNotFound, "no such document"))

	assert.True(t, Is(err, CodeNotFound))
}

func TestWrap_NilCauseIsNil(t *testing.T) {
	if err := Wrap(CodeInternal, "store", nil); err != nil {
		t.Fatalf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeUnavailable, "vector store", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeUnavailable, CodeOf(err))
}

func TestCodeOf_UncodedDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:  http.StatusBadRequest,
		CodeNotFound:    http.StatusNotFound,
		CodeUnavailable: http.StatusServiceUnavailable,
		CodeInternal:    http.StatusInternalServerError,
		Code("mystery"): http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %q", code)
	}
}
