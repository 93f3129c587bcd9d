package discord

type ResponseType int

const (
	ResponsePong                   ResponseType = 1
	ResponseChannelMessage         ResponseType = 4
	ResponseDeferredChannelMessage ResponseType = 5
)

const FlagEphemeral = 1 << 6

type ResponseData struct {
	Content string `json:"content,omitempty"`
	Flags   int    `json:"flags,omitempty"`
}

// InteractionResponse is the reply schema of the interactions endpoint.
type InteractionResponse struct {
	Type ResponseType  `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

func Pong() InteractionResponse {
	return InteractionResponse{Type: ResponsePong}
}

func Message(content string) InteractionResponse {
	return InteractionResponse{
		Type: ResponseChannelMessage,
		Data: &ResponseData{Content: content},
	}
}

func EphemeralMessage(content string) InteractionResponse {
	return InteractionResponse{
		Type: ResponseChannelMessage,
		Data: &ResponseData{Content: content, Flags: FlagEphemeral},
	}
}

func DeferredAck() InteractionResponse {
	return InteractionResponse{Type: ResponseDeferredChannelMessage}
}
