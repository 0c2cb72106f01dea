package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := Validation("checkout", "customer name required", map[string]string{
		"customer_name": "required when due > 0",
		"cart":          "ok",
	})
	assert.Equal(t,
		"VALIDATION checkout: customer name required (cart=ok, customer_name=required when due > 0)",
		err.Error())
}

func TestError_WrappedPredicates(t *testing.T) {
	base := NotFound("store.get", CollectionCatalog, "rice")
	wrapped := fmt.Errorf("load cart: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))
}

func TestError_StoreUnavailableUnwraps(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := StoreUnavailable("store.put", cause)

	assert.True(t, IsStoreUnavailable(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.False(t, IsRemoteDelivery(nil))
}
