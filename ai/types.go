package ai

// Role tags a message with its originator.
type Role string

const (
	// RoleSystem carries instructions for the model.
	RoleSystem Role = "system"
	// RoleUser carries the content to operate on.
	RoleUser Role = "user"
)

// Part is one content block within a message: either text or an inline image.
type Part interface {
	isPart()
}

// TextPart is a plain text content block.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// ImagePart is an inline image content block for vision-capable requests.
type ImagePart struct {
	// MediaType is the MIME type of the payload, e.g. "image/png".
	MediaType string
	Data      []byte
}

func (ImagePart) isPart() {}

// Message is an ordered sequence of role-tagged content blocks.
type Message struct {
	Role  Role
	Parts []Part
}

// SystemText builds a system message holding a single text block.
func SystemText(text string) Message {
	return Message{Role: RoleSystem, Parts: []Part{TextPart{Text: text}}}
}

// UserText builds a user message holding a single text block.
func UserText(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// ImageData is resolved image content ready for inclusion in a vision request.
type ImageData struct {
	Data      []byte
	MediaType string
}
