package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkessel/daynote/internal/config"
)

func TestSafeEqual(t *testing.T) {
	assert.True(t, safeEqual("secret", "secret"))
	assert.False(t, safeEqual("secret", "Secret"))
	assert.False(t, safeEqual("secret", "secret2"))
	assert.False(t, safeEqual("", "secret"))
	assert.True(t, safeEqual("", ""))
}

func TestAuthorize(t *testing.T) {
	auth := ResolvedAuth{Token: "tok", Owner: "alice"}

	assert.True(t, Authorize(auth, "tok"))
	assert.False(t, Authorize(auth, "wrong"))
	assert.False(t, Authorize(auth, ""))
}

func TestAuthorize_UnconfiguredTokenRejectsAll(t *testing.T) {
	auth := ResolvedAuth{Owner: "alice"}

	assert.False(t, Authorize(auth, ""))
	assert.False(t, Authorize(auth, "anything"))
}

func TestResolveAuth_EnvFallback(t *testing.T) {
	t.Setenv("DAYNOTE_GATEWAY_TOKEN", "env-tok")

	auth := ResolveAuth(config.GatewayAuth{})
	assert.Equal(t, "env-tok", auth.Token)
	assert.Equal(t, "local", auth.Owner)

	auth = ResolveAuth(config.GatewayAuth{Token: "cfg-tok", Owner: "alice"})
	assert.Equal(t, "cfg-tok", auth.Token)
	assert.Equal(t, "alice", auth.Owner)
}
