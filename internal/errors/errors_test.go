package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
		severity Severity
	}{
		{"config", ErrCodeConfigInvalid, CategoryConfig, SeverityError},
		{"io", ErrCodeIO, CategoryIO, SeverityError},
		{"not found", ErrCodeIndexNotFound, CategoryIndex, SeverityError},
		{"corrupt", ErrCodeIndexCorrupt, CategoryIndex, SeverityFatal},
		{"extraction", ErrCodeExtractionFailed, CategoryIndex, SeverityWarning},
		{"parse", ErrCodeQueryParse, CategoryQuery, SeverityError},
		{"internal", ErrCodeInternal, CategoryInternal, SeverityFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
		})
	}
}

func TestTomeError_ErrorFormat(t *testing.T) {
	err := New(ErrCodeIndexNotFound, "no index named \"books\"", nil)
	assert.Equal(t, `[ERR_301_INDEX_NOT_FOUND] no index named "books"`, err.Error())
}

func TestTomeError_UnwrapChain(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := Wrap(ErrCodeIO, fmt.Errorf("writing registry: %w", cause))

	assert.True(t, stderrors.Is(err, err))
	assert.ErrorContains(t, err, "disk on fire")

	var te *TomeError
	require.True(t, stderrors.As(err, &te))
	assert.Equal(t, ErrCodeIO, te.Code)
}

func TestTomeError_IsMatchesByCode(t *testing.T) {
	a := IndexNotFound("books")
	b := IndexNotFound("papers")
	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, IOError("x", nil)))
}

func TestGetCode_WrappedDeep(t *testing.T) {
	inner := QueryParse(`"unbalanced`, "unterminated quote")
	wrapped := fmt.Errorf("search failed: %w", inner)

	assert.Equal(t, ErrCodeQueryParse, GetCode(wrapped))
	assert.Equal(t, CategoryQuery, GetCategory(wrapped))
	assert.Equal(t, "", GetCode(fmt.Errorf("plain")))
}

func TestExitCode_DistinguishesCategories(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, ExitOK},
		{"not found", IndexNotFound("x"), ExitNotFound},
		{"parse", QueryParse("(", "unbalanced parenthesis"), ExitQuery},
		{"unsupported", QueryUnsupported("fuzzy mode does not allow quotes"), ExitQuery},
		{"io", IOError("cannot write", nil), ExitIO},
		{"corrupt", IndexCorrupt("books", nil), ExitCorruptIndex},
		{"plain error", fmt.Errorf("boom"), ExitInternal},
		{"wrapped not found", fmt.Errorf("resolving: %w", IndexNotFound("x")), ExitNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ExitCode(tt.err))
		})
	}
}

func TestWithDetailAndSuggestion(t *testing.T) {
	err := IndexCorrupt("books", nil).WithDetail("path", "/tmp/books/index.db")
	assert.Equal(t, "books", err.Details["index"])
	assert.Equal(t, "/tmp/books/index.db", err.Details["path"])
	assert.Contains(t, err.Suggestion, "reload")
}
