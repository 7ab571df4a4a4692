package domain

// InboxMessage is one inbound mailbox message from the platform. Timestamp is
// kept as the platform's ISO string so cursor comparison stays lexicographic.
type InboxMessage struct {
	SenderKey  string
	SenderName string
	Subject    string
	Text       string
	Timestamp  string
}

// Template is one outbound message variant. Body may contain the $NAME
// placeholder, replaced with the athlete's first name at send time.
type Template struct {
	Subject string
	Body    string
}

// ReplyDecision is the outcome of the external reply-decision service for one
// inbound message.
type ReplyDecision struct {
	Reply  bool
	Answer string
}
