package prompt

import (
	"fmt"
	"strings"
	"testing"

	"magic-diary-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize_Empty(t *testing.T) {
	assert.Equal(t, "", Serialize(nil))
}

func TestSerialize_LineCountAndOrder(t *testing.T) {
	for k := 0; k <= 5; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			c := store.NewConversation()
			for i := 0; i < k; i++ {
				id := c.Append(fmt.Sprintf("u%d", i))
				c.Resolve(id, fmt.Sprintf("a%d", i))
			}
			c.Append(fmt.Sprintf("u%d", k))

			out := Serialize(c.Snapshot())
			lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
			require.Len(t, lines, 2*k+1)

			for i := 0; i < k; i++ {
				assert.Equal(t, fmt.Sprintf("User: u%d", i), lines[2*i])
				assert.Equal(t, fmt.Sprintf("Assistant: a%d", i), lines[2*i+1])
			}
			assert.Equal(t, fmt.Sprintf("User: u%d", k), lines[2*k])
		})
	}
}

func TestSerialize_Deterministic(t *testing.T) {
	c := store.NewConversation()
	id := c.Append("hello")
	c.Resolve(id, "hi")
	turns := c.Snapshot()

	assert.Equal(t, Serialize(turns), Serialize(turns))
	assert.Equal(t, "User: hello\nAssistant: hi\n", Serialize(turns))
}

func TestComposeUserMessage(t *testing.T) {
	assert.Equal(t, "Hello", ComposeUserMessage("", "Hello"))
	assert.Equal(t, "Hello", ComposeUserMessage("\n\n", "Hello"))
	assert.Equal(t,
		"User: a\nAssistant: b\n\nUser: c",
		ComposeUserMessage("User: a\nAssistant: b\n", "c"),
	)
}
