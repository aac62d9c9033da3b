package transcript

import (
	"testing"

	"magic-diary-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func TestExport_Empty(t *testing.T) {
	assert.Equal(t, Header, Export(nil))
}

func TestExport_ResolvedTurn(t *testing.T) {
	c := store.NewConversation()
	id := c.Append("Dear diary, I saw a cat today")
	c.Resolve(id, "A cat! How whiskerful.")

	assert.Equal(t,
		Header+"You: Dear diary, I saw a cat today\nDiary: A cat! How whiskerful.\n\n",
		Export(c.Snapshot()),
	)
}

func TestExport_PendingTurnHasNoDiaryLine(t *testing.T) {
	c := store.NewConversation()
	id := c.Append("one")
	c.Resolve(id, "reply")
	c.Append("two")

	assert.Equal(t,
		Header+"You: one\nDiary: reply\n\nYou: two\n\n",
		Export(c.Snapshot()),
	)
}
