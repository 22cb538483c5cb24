package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/ripple/internal/state"
)

func TestDefaults(t *testing.T) {
	d := Defaults()

	assert.True(t, d.AutoplayNext)
	assert.True(t, d.ShowRandomCoverArt)
	assert.True(t, d.ResumeOnStartup)
	assert.False(t, d.AlwaysShuffle)
	assert.False(t, d.AlwaysRepeat)
	assert.Equal(t, "#00F5D4", d.AccentColor)
}

func TestToggle_PersistsEveryChange(t *testing.T) {
	mock := state.NewMock()
	s := New(mock, Defaults())

	for _, name := range Flags() {
		got, err := s.Toggle(name)
		require.NoError(t, err, name)

		var persisted Settings
		ok, err := mock.Load(StorageKey, &persisted)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, s.Get(), persisted, name)
		assert.Equal(t, got, *flagField(&persisted, name), name)
	}
	assert.Equal(t, len(Flags()), mock.SaveCount(StorageKey))
}

func TestToggle_IsItsOwnInverse(t *testing.T) {
	s := New(state.NewMock(), Defaults())

	assert.False(t, s.ToggleAutoplayNext())
	assert.True(t, s.ToggleAutoplayNext())
	assert.True(t, s.ToggleAlwaysShuffle())
	assert.True(t, s.ToggleAlwaysRepeat())
	assert.False(t, s.ToggleShowRandomCoverArt())
	assert.False(t, s.ToggleResumeOnStartup())
}

func TestToggle_UnknownFlag(t *testing.T) {
	mock := state.NewMock()
	s := New(mock, Defaults())

	_, err := s.Toggle("nightMode")

	assert.True(t, errors.Is(err, ErrUnknownSetting))
	assert.Equal(t, 0, mock.SaveCount(StorageKey))
}

func TestSetAccent(t *testing.T) {
	s := New(state.NewMock(), Defaults())

	require.NoError(t, s.SetAccent(AccentPink, "#AABBCC"))
	assert.Equal(t, "#aabbcc", s.Get().AccentPink)

	err := s.SetAccent(AccentPurple, "purple")
	assert.True(t, errors.Is(err, ErrInvalidColor))
	assert.Equal(t, Defaults().AccentPurple, s.Get().AccentPurple)

	err = s.SetAccent("accentGreen", "#000000")
	assert.True(t, errors.Is(err, ErrUnknownSetting))
}

func TestLoad_KeepsDefaultsForMissingFields(t *testing.T) {
	mock := state.NewMock()
	mock.Put(StorageKey, map[string]any{"alwaysRepeat": true})
	s := New(mock, Defaults())

	require.NoError(t, s.Load())

	got := s.Get()
	assert.True(t, got.AlwaysRepeat)
	assert.True(t, got.AutoplayNext, "missing field keeps default")
	assert.Equal(t, Defaults().AccentColor, got.AccentColor)
}

func TestLoad_NothingStored(t *testing.T) {
	defaults := Defaults()
	defaults.AutoplayNext = false
	s := New(state.NewMock(), defaults)

	require.NoError(t, s.Load())

	assert.False(t, s.Get().AutoplayNext)
}

func TestLoad_Error(t *testing.T) {
	mock := state.NewMock()
	mock.SetFailLoads(true)
	s := New(mock, Defaults())

	require.Error(t, s.Load())
	assert.Equal(t, Defaults(), s.Get())
}

func TestReset(t *testing.T) {
	s := New(state.NewMock(), Defaults())
	s.ToggleAlwaysShuffle()

	s.Reset()

	assert.Equal(t, Defaults(), s.Get())
}
