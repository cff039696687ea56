package types

type ClientState struct {
	AnonymousSessionID   string `json:"anonymous_session_id"`
	ActiveConversationID string `json:"active_conversation_id"`
	SidebarCollapsed     bool   `json:"sidebar_collapsed"`
}
