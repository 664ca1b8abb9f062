package ledgererror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMappingError(t *testing.T) {
	err := &MappingError{Platform: "alipay", RowIndex: 3, Field: "amount", Reason: "source value is empty"}

	assert.Contains(t, err.Error(), "alipay")
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), `"amount"`)
}

func TestTimeParseError(t *testing.T) {
	err := &TimeParseError{Raw: "yesterday", Layouts: 12}

	assert.Contains(t, err.Error(), `"yesterday"`)
	assert.Contains(t, err.Error(), "12 layouts")
}

func TestAIErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &AIError{Provider: "gemini", Reason: "request failed", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "gemini")

	bare := &AIError{Provider: "gemini", Reason: "empty response"}
	assert.NoError(t, bare.Unwrap())
	assert.Contains(t, bare.Error(), "empty response")
}
