package validation_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyceum/internal/shared/validation"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=user admin banned"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	t.Parallel()

	details := validation.Struct(registerRequest{Email: "nope", Password: "short", Role: "root"})
	require.Len(t, details, 4)

	byField := map[string]string{}
	for _, d := range details {
		byField[d.Field] = d.Detail
	}
	assert.Equal(t, "must be a valid email address", byField["email"])
	assert.Equal(t, "is required", byField["name"])
	assert.Equal(t, "must be at least 8 characters", byField["password"])
	assert.Equal(t, "must be one of: user admin banned", byField["role"])
}

func TestStructAcceptsValidInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, validation.Struct(registerRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "correct horse",
	}))
}

func TestDetailsUnwrapsFieldError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("invalid request")
	err := fmt.Errorf("%w: %w", sentinel, validation.Field("price_cents", "must not be negative"))

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, []validation.FieldError{{Field: "price_cents", Detail: "must not be negative"}}, validation.Details(err))
	assert.Nil(t, validation.Details(sentinel))
}
