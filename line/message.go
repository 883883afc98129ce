package line

// Message is a single message object of the messaging API.
type Message interface {
	messageType() string
}

type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewTextMessage(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

func (m TextMessage) messageType() string { return m.Type }

// FlexMessage renders a bubble layout. AltText is shown where the layout can't be.
type FlexMessage struct {
	Type     string `json:"type"`
	AltText  string `json:"altText"`
	Contents Bubble `json:"contents"`
}

func NewFlexMessage(altText string, contents Bubble) FlexMessage {
	return FlexMessage{Type: "flex", AltText: altText, Contents: contents}
}

func (m FlexMessage) messageType() string { return m.Type }

type Bubble struct {
	Type   string `json:"type"`
	Header *Box   `json:"header,omitempty"`
	Body   *Box   `json:"body,omitempty"`
	Footer *Box   `json:"footer,omitempty"`
}

func NewBubble(header *Box, body *Box, footer *Box) Bubble {
	return Bubble{Type: "bubble", Header: header, Body: body, Footer: footer}
}

// Component is an element of a Box.
type Component interface {
	componentType() string
}

type Box struct {
	Type     string      `json:"type"`
	Layout   string      `json:"layout"`
	Contents []Component `json:"contents"`
	Spacing  string      `json:"spacing,omitempty"`
	Margin   string      `json:"margin,omitempty"`
}

// NewBox creates box with "vertical", "horizontal" or "baseline" layout.
func NewBox(layout string, contents ...Component) *Box {
	if contents == nil {
		contents = []Component{}
	}
	return &Box{Type: "box", Layout: layout, Contents: contents}
}

func (b *Box) componentType() string { return b.Type }

type Text struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Size   string `json:"size,omitempty"`
	Weight string `json:"weight,omitempty"`
	Color  string `json:"color,omitempty"`
	Align  string `json:"align,omitempty"`
	Flex   *int   `json:"flex,omitempty"`
	Wrap   bool   `json:"wrap,omitempty"`
}

func NewText(text string) *Text {
	return &Text{Type: "text", Text: text}
}

func (t *Text) componentType() string { return t.Type }

func (t *Text) WithSize(size string) *Text {
	t.Size = size
	return t
}

func (t *Text) Bold() *Text {
	t.Weight = "bold"
	return t
}

func (t *Text) WithColor(color string) *Text {
	t.Color = color
	return t
}

func (t *Text) WithAlign(align string) *Text {
	t.Align = align
	return t
}

func (t *Text) WithFlex(flex int) *Text {
	t.Flex = &flex
	return t
}

func (t *Text) Wrapped() *Text {
	t.Wrap = true
	return t
}

type Separator struct {
	Type   string `json:"type"`
	Margin string `json:"margin,omitempty"`
}

func NewSeparator(margin string) *Separator {
	return &Separator{Type: "separator", Margin: margin}
}

func (s *Separator) componentType() string { return s.Type }

type URIAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URI   string `json:"uri"`
}

type Button struct {
	Type   string    `json:"type"`
	Style  string    `json:"style,omitempty"`
	Action URIAction `json:"action"`
}

func NewURIButton(label string, uri string) *Button {
	return &Button{
		Type:   "button",
		Style:  "primary",
		Action: URIAction{Type: "uri", Label: label, URI: uri},
	}
}

func (b *Button) componentType() string { return b.Type }
