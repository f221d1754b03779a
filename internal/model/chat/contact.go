package chat

// Contact owns an ordered message thread.
type Contact struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Online   bool      `json:"online" yaml:"online"`
	Messages []Message `json:"messages" yaml:"-"`
}

// Clone returns a deep copy of the contact and its thread.
func (c Contact) Clone() Contact {
	messages := make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		messages[i] = m.Clone()
	}
	c.Messages = messages
	return c
}

// Summary drops the thread, for listings.
func (c Contact) Summary() Contact {
	c.Messages = nil
	return c
}
