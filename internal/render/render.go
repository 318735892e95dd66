// Package render draws a conversation log for a terminal, newest turn first.
package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/pesanmasa/chatbot/internal/model"
)

// Labels shown in front of each turn.
const (
	UserLabel = "Anda:"
	BotLabel  = "Bot:"
)

// Renderer styles turns for one output stream. Colors are dropped
// automatically when the stream is not a terminal.
type Renderer struct {
	title lipgloss.Style
	user  lipgloss.Style
	bot   lipgloss.Style
	empty lipgloss.Style
}

// New returns a Renderer that detects the color support of w.
func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		title: r.NewStyle().Bold(true).Underline(true),
		user:  r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FAFFF"}),
		bot:   r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5F8700", Dark: "#87D75F"}),
		empty: r.NewStyle().Faint(true),
	}
}

// Title styles a heading line.
func (r *Renderer) Title(s string) string {
	return r.title.Render(s)
}

// Turn renders a single turn as "<label> <text>".
func (r *Renderer) Turn(t model.Turn) string {
	if t.Role == model.RoleUser {
		return r.user.Render(UserLabel) + " " + t.Text
	}
	return r.bot.Render(BotLabel) + " " + t.Text
}

// Log writes every turn of log to w, most recent first, one per line.
func (r *Renderer) Log(w io.Writer, log model.ConversationLog) error {
	if log.Len() == 0 {
		_, err := fmt.Fprintln(w, r.empty.Render("(belum ada percakapan)"))
		return err
	}
	for _, t := range log.Newest() {
		if _, err := fmt.Fprintln(w, r.Turn(t)); err != nil {
			return err
		}
	}
	return nil
}
