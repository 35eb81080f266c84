package dispatch

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/go-review-desk/internal/models"
	"github.com/stretchr/testify/require"
)

func TestKeyAction_CaseInsensitive(t *testing.T) {
	t.Parallel()

	for key, want := range map[string]models.Action{
		"a": models.ActionAccept,
		"A": models.ActionAccept,
		"d": models.ActionReject,
		"D": models.ActionReject,
	} {
		got, ok := KeyAction(key)
		require.True(t, ok, key)
		require.Equal(t, want, got, key)
	}

	for _, key := range []string{"s", "", "ad", "Enter"} {
		_, ok := KeyAction(key)
		require.False(t, ok, key)
	}
}

func TestKeyboard_UnknownKeyAndNoBinding(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	defer f.ctrl.Finish()

	kb := NewKeyboard(f.dispatcher(Options{}))
	kb.Attach(f.q)

	_, err := kb.Press(context.Background(), "x")
	require.ErrorIs(t, err, ErrUnknownKey)

	_, err = kb.Press(context.Background(), "a")
	require.ErrorIs(t, err, ErrNoItem)
}

// TestKeyboard_StaleBinding — устаревшая привязка не решает за другой элемент.
func TestKeyboard_StaleBinding(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	defer f.ctrl.Finish()
	f.preload("x.png", "y.png")

	kb := NewKeyboard(f.dispatcher(Options{}))
	kb.Rebind("old.png")

	_, err := kb.Press(context.Background(), "D")
	require.ErrorIs(t, err, ErrStaleBinding)
	require.Equal(t, "x.png", current(t, f.q), "display slot must be untouched")
}

// TestKeyboard_FollowsDisplayedIdentity — привязка следует за сменой отображаемого элемента.
func TestKeyboard_FollowsDisplayedIdentity(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	defer f.ctrl.Finish()

	f.sink.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.stats.EXPECT().Stats(gomock.Any()).Return(models.Stats{}, nil).Times(2)

	d := f.dispatcher(Options{})
	kb := NewKeyboard(d)
	kb.Attach(f.q)
	require.Equal(t, "", kb.Bound())

	f.preload("x.png", "y.png")
	require.Equal(t, "x.png", kb.Bound())

	dec, err := kb.Press(context.Background(), "A")
	require.NoError(t, err)
	require.Equal(t, "x.png", dec.Filename)
	require.Equal(t, "y.png", kb.Bound())

	dec, err = kb.Press(context.Background(), "d")
	require.NoError(t, err)
	require.Equal(t, "y.png", dec.Filename)
	require.Equal(t, models.ActionReject, dec.Action)
	require.Equal(t, "", kb.Bound())

	d.Wait()
}
