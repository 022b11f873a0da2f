package bot

import (
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ErrAwaitTimeout is returned when the awaited user never replies.
var ErrAwaitTimeout = errors.New("timed out waiting for message")

type waiterKey struct {
	userID    string
	channelID string
}

// AwaitMessage blocks until the given user posts a message in the given
// channel, or the timeout expires. Only one waiter per user and channel is
// kept; a second registration replaces the first.
func (b *Bot) AwaitMessage(userID, channelID string, timeout time.Duration) (*discordgo.Message, error) {
	key := waiterKey{userID: userID, channelID: channelID}
	ch := make(chan *discordgo.Message, 1)

	b.waitersMutex.Lock()
	b.waiters[key] = ch
	b.waitersMutex.Unlock()

	defer func() {
		b.waitersMutex.Lock()
		if b.waiters[key] == ch {
			delete(b.waiters, key)
		}
		b.waitersMutex.Unlock()
	}()

	select {
	case msg := <-ch:
		return msg, nil
	case <-time.After(timeout):
		return nil, ErrAwaitTimeout
	}
}

// DispatchMessage hands an incoming message to a matching waiter, if any.
// Wired into the session's MessageCreate handler.
func (b *Bot) DispatchMessage(m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	key := waiterKey{userID: m.Author.ID, channelID: m.ChannelID}

	b.waitersMutex.Lock()
	ch, ok := b.waiters[key]
	if ok {
		delete(b.waiters, key)
	}
	b.waitersMutex.Unlock()

	if ok {
		ch <- m.Message
	}
}
