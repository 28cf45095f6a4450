package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(BadRequest("bad")))
	assert.Equal(t, http.StatusForbidden, StatusOf(fmt.Errorf("wrapped: %w", Forbidden("no"))))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestNotFoundOr(t *testing.T) {
	err := NotFoundOr(fmt.Errorf("load: %w", gorm.ErrRecordNotFound), "session not found")
	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "session not found", appErr.Message)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	other := errors.New("connection reset")
	assert.Same(t, other, NotFoundOr(other, "x"))
}
