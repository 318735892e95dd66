package model

// Role identifies who produced a turn.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Turn is one message in a conversation. Turns are values and are never
// modified after creation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserTurn returns a turn spoken by the user.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// BotTurn returns a turn spoken by the bot.
func BotTurn(text string) Turn {
	return Turn{Role: RoleBot, Text: text}
}
