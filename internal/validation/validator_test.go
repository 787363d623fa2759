package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecocare/internal/dto"
)

func ptr[T any](v T) *T { return &v }

func TestStructValid(t *testing.T) {
	req := dto.NewDetection{
		ProductType:   "Smartphone",
		Brand:         "Apple",
		ModelOrSeries: "iPhone 12",
		Confidence:    ptr(87.5),
	}
	assert.NoError(t, Struct(&req))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	req := dto.NewDetection{Brand: "Apple", ModelOrSeries: "X", Confidence: ptr(140.0)}

	err := Struct(&req)
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, FieldError{Field: "product_type", Tag: "required", Message: "product_type is required"}, verr.Fields[0])
	assert.Equal(t, "confidence must be at most 100", verr.Fields[1].Message)
	assert.Equal(t, "product_type is required; confidence must be at most 100", err.Error())
}

func TestStructNegativeConfidence(t *testing.T) {
	req := dto.NewDetection{ProductType: "Laptop", Brand: "Dell", ModelOrSeries: "XPS", Confidence: ptr(-1.0)}
	err := Struct(&req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confidence must be at least 0")
}

func TestStructProfileUpdate(t *testing.T) {
	assert.NoError(t, Struct(&dto.ProfileUpdate{}))
	assert.NoError(t, Struct(&dto.ProfileUpdate{Email: ptr("a@b.co")}))

	err := Struct(&dto.ProfileUpdate{Email: ptr("not-an-email"), Name: ptr("")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email address")
}
