package chat

import "encoding/json"

// Message is a Minecraft JSON chat component.
type Message struct {
	Text          string    `json:"text"`
	Bold          bool      `json:"bold,omitempty"`
	Italic        bool      `json:"italic,omitempty"`
	Underlined    bool      `json:"underlined,omitempty"`
	Strikethrough bool      `json:"strikethrough,omitempty"`
	Obfuscated    bool      `json:"obfuscated,omitempty"`
	Color         string    `json:"color,omitempty"`
	Extra         []Message `json:"extra,omitempty"`
}

// Named colors the 1.8 client understands.
const (
	ColorRed    = "red"
	ColorGray   = "gray"
	ColorYellow = "yellow"
	ColorGreen  = "green"
	ColorAqua   = "aqua"
	ColorGold   = "gold"
	ColorWhite  = "white"
)

// String serializes the message to its JSON wire form.
func (m Message) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// WithColor returns a copy of the message with the given color.
func (m Message) WithColor(color string) Message {
	m.Color = color
	return m
}

// Append returns a copy of the message with extra components attached.
func (m Message) Append(extra ...Message) Message {
	m.Extra = append(m.Extra, extra...)
	return m
}

// Text creates a plain text message.
func Text(text string) Message {
	return Message{Text: text}
}

// Colored creates a colored text message.
func Colored(text, color string) Message {
	return Message{Text: text, Color: color}
}

// Translatef creates a message with trailing components appended, the
// closest this server gets to the vanilla translate format.
func Translatef(format string, args ...Message) Message {
	msg := Message{Text: format}
	if len(args) > 0 {
		msg.Extra = args
	}
	return msg
}
