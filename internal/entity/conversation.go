package entity

// Conversation is the value shape of a conversation document in the remote
// store, keyed by the invoking user id. It is not a database table; the
// mapstructure tags decode the document value into this struct.
type Conversation struct {
	Entries []ConversationEntry `json:"entries" mapstructure:"entries"`
}

type ConversationEntry struct {
	UserMessage string `json:"user_message" mapstructure:"user_message"`
	BotReply    string `json:"bot_reply" mapstructure:"bot_reply"`
	Timestamp   string `json:"timestamp" mapstructure:"timestamp"`
}
