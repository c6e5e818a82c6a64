package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func staticStep(name string, v int, ok bool, err error) lookupStep[int] {
	return lookupStep[int]{name: name, find: func(context.Context) (int, bool, error) { return v, ok, err }}
}

func TestFirstMatch(t *testing.T) {
	ctx := context.Background()

	v, name, ok, err := firstMatch(ctx,
		staticStep("a", 0, false, nil),
		staticStep("b", 2, true, nil),
		staticStep("c", 3, true, nil),
	)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, "b", name)

	_, _, ok, err = firstMatch(ctx, staticStep("a", 0, false, nil))
	assert.NoError(t, err)
	assert.False(t, ok)

	_, name, ok, err = firstMatch(ctx,
		staticStep("a", 0, false, errStoreDown),
		staticStep("b", 2, true, nil),
	)
	assert.ErrorIs(t, err, errStoreDown)
	assert.False(t, ok)
	assert.Equal(t, "a", name)
}

func TestFound(t *testing.T) {
	ok, err := found(nil)
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = found(gorm.ErrRecordNotFound)
	assert.False(t, ok)
	assert.NoError(t, err)

	ok, err = found(errors.New("boom"))
	assert.False(t, ok)
	assert.Error(t, err)
}
