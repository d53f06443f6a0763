package tkv

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Giulio2002/tkv/internal/engine"
)

func TestTranslateStatuses(t *testing.T) {
	tests := []struct {
		status engine.Status
		kind   Kind
	}{
		{engine.KeyExist, KeyExists},
		{engine.NotFound, NotFound},
		{engine.PageNotFound, PageNotFound},
		{engine.Corrupted, PageMismatch},
		{engine.Panic, Panic},
		{engine.VersionMismatch, VersionMismatch},
		{engine.Invalid, InvalidFile},
		{engine.MapFull, MaxMapExceeded},
		{engine.DBsFull, MaxDbsExceeded},
		{engine.ReadersFull, MaxReadersExceeded},
		{engine.TLSFull, TLSLimitExceeded},
		{engine.TxnFull, MaxDirtyTxnExceeded},
		{engine.CursorFull, CursorDepthExceeded},
		{engine.MapResized, MapsizeTooSmall},
		{engine.Incompatible, IncompatibleOptions},
		{engine.BadRSlot, InvalidReuse},
		{engine.BadTxn, BadTransaction},
		{engine.BadDBI, BadDatabase},
		{engine.Permission, Unknown},
		{engine.InvalidArgument, Unknown},
		{engine.Problem, Unknown},
		{engine.BadValSize, Unknown},
		{engine.Busy, Unknown},
		{engine.Status(-1), Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			err := translate("op", engine.NewError("primitive", tt.status))
			require.NotNil(t, err)
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, "op", err.Op)
			assert.NotEmpty(t, err.Message)
			assert.Equal(t, tt.status, engine.StatusOf(err))
		})
	}
}

func TestTranslateNeverNil(t *testing.T) {
	err := translate("op", nil)
	require.NotNil(t, err)
	assert.Equal(t, Unknown, err.Kind)

	err = translate("op", errors.New("plain"))
	require.NotNil(t, err)
	assert.Equal(t, Unknown, err.Kind)
}

func TestTranslateKeepsStoreErrors(t *testing.T) {
	orig := newError(opGet, NotFound, "")
	wrapped := fmt.Errorf("lookup: %w", orig)
	assert.Same(t, orig, translate("other", wrapped))
}

func TestErrorsIs(t *testing.T) {
	err := fmt.Errorf("context: %w", translate(opGet, engine.NewError("get", engine.NotFound)))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrKeyExists)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsKeyExists(err))
	assert.Equal(t, NotFound, KindOf(err))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestErrorMessage(t *testing.T) {
	err := translate(opAdd, engine.NewError("put", engine.KeyExist))
	assert.Contains(t, err.Error(), "tkv: add: key already exists")
	assert.Contains(t, err.Error(), "put")
	assert.Equal(t, "tkv: key/value pair not found in database", ErrNotFound.Error())
}

func TestIsEnvironmentError(t *testing.T) {
	assert.True(t, IsEnvironmentError(translate(opOpen, engine.NewError("open", engine.Permission))))
	assert.True(t, IsEnvironmentError(translate(opGet, engine.NewError("get", engine.VersionMismatch))))
	assert.True(t, IsEnvironmentError(translate(opGet, engine.NewError("get", engine.Invalid))))
	assert.False(t, IsEnvironmentError(translate(opGet, engine.NewError("get", engine.NotFound))))
	assert.False(t, IsEnvironmentError(errors.New("plain")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "MaxDbsExceeded", MaxDbsExceeded.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
