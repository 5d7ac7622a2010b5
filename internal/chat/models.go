package chat

import "time"

type Conversation struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"id"`
	Title          string    `gorm:"type:varchar(128);not null" json:"title"`
	Provider       string    `gorm:"type:varchar(32);not null" json:"provider"`
	Model          string    `gorm:"type:varchar(64);not null" json:"model"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Conversation) TableName() string { return "chat_conversations" }

type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string    `gorm:"type:varchar(64);not null;index:idx_chat_msg_conversation" json:"-"`
	Role           string    `gorm:"type:varchar(16);not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"-"`
}

func (Message) TableName() string { return "chat_messages" }

// Document is one chunk of a text file uploaded into a conversation.
type Document struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string    `gorm:"type:varchar(64);not null;index:idx_chat_doc_conversation" json:"-"`
	Source         string    `gorm:"type:varchar(255);not null" json:"source"`
	// Hash identifies the whole uploaded file, shared by all its chunks.
	Hash      string    `gorm:"type:char(36);not null;index:idx_chat_doc_hash" json:"hash"`
	Chunk     int       `gorm:"not null" json:"chunk"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"-"`
}

func (Document) TableName() string { return "chat_documents" }

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{&Conversation{}, &Message{}, &Document{}}
}
