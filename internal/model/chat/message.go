package chat

// Roles used on the wire and in persisted state.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is a single turn entry. Once a later message exists it is never
// touched again; the trailing model message is the only one mutated, by
// appending streamed fragments to its content.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
