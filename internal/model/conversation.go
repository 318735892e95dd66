package model

// ConversationLog is the append-only history of one session.
//
// It has value semantics: Append returns a new log and leaves the receiver
// untouched, so a log handed to the presentation layer never changes under
// it. The zero value is an empty log.
type ConversationLog struct {
	turns []Turn
}

// NewConversationLog returns an empty log.
func NewConversationLog() ConversationLog {
	return ConversationLog{}
}

// Append returns a log with the given turns added after the existing ones.
func (l ConversationLog) Append(turns ...Turn) ConversationLog {
	if len(turns) == 0 {
		return l
	}
	// Logs derived from the same parent must never share a backing array.
	next := make([]Turn, len(l.turns), len(l.turns)+len(turns))
	copy(next, l.turns)
	return ConversationLog{turns: append(next, turns...)}
}

// Len returns the number of turns.
func (l ConversationLog) Len() int {
	return len(l.turns)
}

// At returns the i-th turn in chronological order.
func (l ConversationLog) At(i int) Turn {
	return l.turns[i]
}

// Turns returns a copy of the turns in chronological order.
func (l ConversationLog) Turns() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Newest returns a copy of the turns, most recent first. This is the order
// the chat view displays.
func (l ConversationLog) Newest() []Turn {
	out := make([]Turn, len(l.turns))
	for i, t := range l.turns {
		out[len(l.turns)-1-i] = t
	}
	return out
}
