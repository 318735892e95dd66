package output

import "github.com/pesanmasa/chatbot/internal/model"

// FormatExchange returns a copy of ex trimmed to the given verbosity.
// Minimal zeroes Tag, Confidence and Error so omitempty drops them; the
// fallback flag stays since it tells a reader the bot did not understand.
func FormatExchange(ex model.Exchange, v Verbosity) model.Exchange {
	if v == Minimal {
		ex.Tag = ""
		ex.Confidence = 0
		ex.Error = ""
	}
	return ex
}
