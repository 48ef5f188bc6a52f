package deeplink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProduction(t *testing.T) {
	env := ProductionEnvironment()
	for _, app := range []string{"instagram", "my-app", "you-tube-kids", "x"} {
		got, err := Parse(env, "intentional://reflect?app="+app)
		require.NoError(t, err, app)
		assert.Equal(t, Intent{Action: ActionReflect, App: app}, got)
	}
}

func TestParseProductionWithoutQuery(t *testing.T) {
	got, err := Parse(ProductionEnvironment(), "intentional://reflect")
	require.NoError(t, err)
	assert.Equal(t, Intent{Action: "reflect"}, got)
}

func TestParseDecodesQuery(t *testing.T) {
	got, err := Parse(ProductionEnvironment(), "intentional://reflect/?app=my%20app&x=1")
	require.NoError(t, err)
	assert.Equal(t, Intent{Action: "reflect", App: "my app"}, got)
}

func TestParseDevelopmentPayload(t *testing.T) {
	env := DevelopmentEnvironment("192.168.1.5", 8081)
	got, err := Parse(env, "exp://192.168.1.5:8081/--/reflect?app=tiktok")
	require.NoError(t, err)
	assert.Equal(t, Intent{Action: "reflect", App: "tiktok"}, got)

	// The production scheme still works inside a development session.
	got, err = Parse(env, "intentional://reflect?app=tiktok")
	require.NoError(t, err)
	assert.Equal(t, "tiktok", got.App)
}

func TestParseDevelopmentWithoutSeparatorIsIgnored(t *testing.T) {
	env := DevelopmentEnvironment("localhost", 8081)
	for _, raw := range []string{
		"exp://localhost:8081",
		"exp://192.168.1.5:8081/",
		"exps://u.expo.dev/update/abc?app=tiktok",
	} {
		_, err := Parse(env, raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrIgnored), raw)
		assert.False(t, errors.Is(err, ErrMalformedURL), raw)
	}
}

func TestParseUnsupportedScheme(t *testing.T) {
	for _, raw := range []string{"http://example.com/reflect?app=x", "instagram://feed", "mailto://a"} {
		_, err := Parse(ProductionEnvironment(), raw)
		assert.ErrorIs(t, err, ErrUnsupportedScheme, raw)
	}

	// Tunnel schemes are foreign to an installed build.
	_, err := Parse(ProductionEnvironment(), "exp://localhost:8081/--/reflect?app=x")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestParseMalformed(t *testing.T) {
	for _, raw := range []string{"", "intentional", "intentional:/reflect", "intentional://", "://reflect", "intentional://reflect?app=%zz"} {
		_, err := Parse(ProductionEnvironment(), raw)
		assert.ErrorIs(t, err, ErrMalformedURL, raw)
	}
}

func TestFriendlyName(t *testing.T) {
	assert.Equal(t, "my-app", FriendlyName("My App"))
	assert.Equal(t, "apple-music", FriendlyName("Apple  Music"))
	assert.Equal(t, "any.do", FriendlyName("Any.do"))
}

func TestBuildLinkRoundTrip(t *testing.T) {
	prod := ProductionEnvironment()
	link := BuildLink(prod, ActionReflect, "My App")
	assert.Equal(t, "intentional://reflect?app=my-app", link)
	got, err := Parse(prod, link)
	require.NoError(t, err)
	assert.Equal(t, "my-app", got.App)

	dev := DevelopmentEnvironment("10.0.0.2", 19000)
	link = BuildLink(dev, ActionReflect, "My App")
	assert.Equal(t, "exp://10.0.0.2:19000/--/reflect?app=my-app", link)
	got, err = Parse(dev, link)
	require.NoError(t, err)
	assert.Equal(t, Intent{Action: "reflect", App: "my-app"}, got)
}
