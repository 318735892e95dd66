package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesanmasa/chatbot/internal/model"
)

func TestLogNewestFirst(t *testing.T) {
	log := model.NewConversationLog().
		Append(model.UserTurn("halo"), model.BotTurn("Halo! Ada yang bisa dibantu?")).
		Append(model.UserTurn("jam buka?"), model.BotTurn("Pukul 08.00 sampai 21.00."))

	var buf bytes.Buffer
	require.NoError(t, New(&buf).Log(&buf, log))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Bot: Pukul 08.00 sampai 21.00.", lines[0])
	assert.Equal(t, "Anda: jam buka?", lines[1])
	assert.Equal(t, "Bot: Halo! Ada yang bisa dibantu?", lines[2])
	assert.Equal(t, "Anda: halo", lines[3])
}

func TestLogEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf).Log(&buf, model.NewConversationLog()))
	assert.Contains(t, buf.String(), "belum ada percakapan")
}

func TestTurnLabels(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	assert.Equal(t, "Anda: halo", r.Turn(model.UserTurn("halo")))
	assert.Equal(t, "Bot: hai", r.Turn(model.BotTurn("hai")))
	assert.Equal(t, "Chatbot Seputar PESANMASA", r.Title("Chatbot Seputar PESANMASA"))
}

func TestLogDoesNotMutate(t *testing.T) {
	log := model.NewConversationLog().Append(model.UserTurn("a"), model.BotTurn("b"))
	var buf bytes.Buffer
	require.NoError(t, New(&buf).Log(&buf, log))
	turns := log.Turns()
	assert.Equal(t, "a", turns[0].Text)
	assert.Equal(t, "b", turns[1].Text)
}
