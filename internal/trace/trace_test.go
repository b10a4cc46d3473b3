package trace

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	assert.True(t, strings.HasPrefix(a, "req_"))
	assert.NotEqual(t, a, b)
}

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req_fixed")
	assert.Equal(t, "req_fixed", GetRequestID(ctx))

	ctx = WithRequestID(context.Background(), "")
	assert.NotEmpty(t, GetRequestID(ctx))
}

func TestEnsure(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))

	ctx := Ensure(context.Background())
	id := GetRequestID(ctx)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, GetRequestID(Ensure(ctx)), "existing id is kept")
}
