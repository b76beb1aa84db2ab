package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendSearchBlob(t *testing.T) {
	blob := AppendSearchBlob("", "first")
	assert.Equal(t, "first", blob)

	blob = AppendSearchBlob(blob, "second")
	assert.Equal(t, "first second", blob)

	blob = AppendSearchBlob(blob, "third")
	assert.Equal(t, "first second third", blob)
}

func TestRecomputeSearchBlob_MatchesIncrementalAppends(t *testing.T) {
	sess := &ChatSession{}
	blob := ""
	for _, content := range []string{"hello", "hi there", "what's the plan", "nothing yet"} {
		sess.Messages = append(sess.Messages, Message{Role: RoleUser, Content: content})
		blob = AppendSearchBlob(blob, content)
	}

	assert.Equal(t, sess.RecomputeSearchBlob(), blob)
}

func TestRecomputeSearchBlob_Empty(t *testing.T) {
	sess := &ChatSession{}
	assert.Empty(t, sess.RecomputeSearchBlob())
}
