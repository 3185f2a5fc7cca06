package utils

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// MessageType selects the color and prefix of a message box.
type MessageType int

const (
	InfoMessage MessageType = iota
	SuccessMessage
	WarningMessage
	ErrorMessage
)

const (
	topLeft     = "╭"
	topRight    = "╮"
	bottomLeft  = "╰"
	bottomRight = "╯"
	horizontal  = "─"
	vertical    = "│"
)

var boxStyles = map[MessageType]struct {
	style  lipgloss.Style
	prefix string
}{
	InfoMessage:    {lipgloss.NewStyle().Foreground(lipgloss.Color("86")), "ℹ"},
	SuccessMessage: {lipgloss.NewStyle().Foreground(lipgloss.Color("42")), "✓"},
	WarningMessage: {lipgloss.NewStyle().Foreground(lipgloss.Color("178")), "⚠"},
	ErrorMessage:   {lipgloss.NewStyle().Foreground(lipgloss.Color("196")), "✗"},
}

// Box builds a framed message for the end of a run.
type Box struct {
	messageType MessageType
	title       string
	content     []string
	maxWidth    int
}

// NewBox creates a box sized to the terminal.
func NewBox(messageType MessageType, title string) *Box {
	return &Box{
		messageType: messageType,
		title:       title,
		maxWidth:    getTerminalWidth() - 8,
	}
}

// WithWidth overrides the maximum box width.
func (b *Box) WithWidth(width int) *Box {
	b.maxWidth = width
	return b
}

// AddLine adds a line of text.
func (b *Box) AddLine(text string) *Box {
	b.content = append(b.content, text)
	return b
}

// AddBullet adds a bulleted line.
func (b *Box) AddBullet(text string) *Box {
	b.content = append(b.content, "• "+text)
	return b
}

// AddKeyValue adds a "key: value" line.
func (b *Box) AddKeyValue(key, value string) *Box {
	b.content = append(b.content, fmt.Sprintf("%s: %s", key, value))
	return b
}

// Render returns the framed box.
func (b *Box) Render() string {
	s, ok := boxStyles[b.messageType]
	if !ok {
		s = boxStyles[InfoMessage]
	}

	contentWidth := b.maxWidth - 6
	if contentWidth < 20 {
		contentWidth = 20
	}
	var lines []string
	for _, line := range append([]string{b.title}, b.content...) {
		if utf8.RuneCountInString(line) <= contentWidth {
			lines = append(lines, line)
		} else {
			lines = append(lines, wrapText(line, contentWidth)...)
		}
	}

	boxWidth := 6
	for _, line := range lines {
		if n := utf8.RuneCountInString(line) + 6; n > boxWidth {
			boxWidth = n
		}
	}

	var sb strings.Builder
	sb.WriteString(s.style.Render(topLeft+strings.Repeat(horizontal, boxWidth-2)+topRight) + "\n")
	for i, line := range lines {
		lead := "  "
		if i == 0 {
			lead = s.style.Bold(true).Render(s.prefix) + " "
		}
		padding := boxWidth - utf8.RuneCountInString(line) - 5
		if padding < 0 {
			padding = 0
		}
		sb.WriteString(fmt.Sprintf("%s %s%s%s%s\n",
			s.style.Render(vertical), lead, line, strings.Repeat(" ", padding), s.style.Render(vertical)))
	}
	sb.WriteString(s.style.Render(bottomLeft + strings.Repeat(horizontal, boxWidth-2) + bottomRight))
	return sb.String()
}

// Success renders a success box.
func Success(title string, lines ...string) string {
	return render(SuccessMessage, title, lines)
}

// Error renders an error box.
func Error(title string, lines ...string) string {
	return render(ErrorMessage, title, lines)
}

func render(t MessageType, title string, lines []string) string {
	box := NewBox(t, title)
	for _, line := range lines {
		box.AddLine(line)
	}
	return box.Render()
}

// getTerminalWidth returns the terminal width or 80 when stdout is not a
// terminal.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if utf8.RuneCountInString(current)+utf8.RuneCountInString(word)+1 <= maxWidth {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
