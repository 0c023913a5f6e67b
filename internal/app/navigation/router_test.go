package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mind-connect/internal/app/navigation"
)

func TestRouterStartsOnLogin(t *testing.T) {
	r := navigation.NewRouter()
	assert.Equal(t, navigation.Login, r.Current())

	require.NoError(t, r.Navigate(navigation.SignUp))
	assert.Equal(t, navigation.SignUp, r.Current())

	err := r.Navigate(navigation.Home)
	assert.ErrorIs(t, err, navigation.ErrNotAllowed)
	assert.Equal(t, navigation.SignUp, r.Current())
}

func TestRouterAuthTransitions(t *testing.T) {
	r := navigation.NewRouter()
	var seen []navigation.Screen
	r.OnChange(func(s navigation.Screen) { seen = append(seen, s) })

	r.SetAuthenticated(true)
	assert.Equal(t, navigation.Home, r.Current())

	require.NoError(t, r.Navigate(navigation.Chatbot))
	assert.ErrorIs(t, r.Navigate(navigation.Login), navigation.ErrNotAllowed)

	r.SetAuthenticated(false)
	assert.Equal(t, navigation.Login, r.Current())

	assert.Equal(t, []navigation.Screen{navigation.Home, navigation.Chatbot, navigation.Login}, seen)
}

func TestRouterSignOutKeepsSignUp(t *testing.T) {
	r := navigation.NewRouter()
	require.NoError(t, r.Navigate(navigation.SignUp))
	r.SetAuthenticated(false)
	assert.Equal(t, navigation.SignUp, r.Current())
}

func TestParse(t *testing.T) {
	s, err := navigation.Parse("mood-check")
	require.NoError(t, err)
	assert.Equal(t, navigation.MoodCheck, s)

	_, err = navigation.Parse("settings")
	assert.ErrorIs(t, err, navigation.ErrUnknownScreen)
}
