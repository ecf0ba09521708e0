package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	ImportProgress NotificationType = "import_progress"
	ImportComplete NotificationType = "import_complete"
	ImportError    NotificationType = "import_error"
	TreeChanged    NotificationType = "tree_changed"
)

// Notification is one message pushed to a user's open connections.
type Notification struct {
	Type     NotificationType       `json:"type"`
	UserID   uint                   `json:"user_id"`
	FolderID uint                   `json:"folder_id,omitempty"`
	Progress int                    `json:"progress,omitempty"`
	Total    int                    `json:"total,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// Client represents a WebSocket client connection
type Client struct {
	UserID uint
	Conn   *websocket.Conn
}

// Manager handles WebSocket connections and notifications
type Manager struct {
	clients    map[uint][]*Client
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
}

var (
	instance *Manager
	once     sync.Once
)

// GetManager returns the singleton WebSocket manager instance
func GetManager() *Manager {
	once.Do(func() {
		instance = &Manager{
			clients:    make(map[uint][]*Client),
			register:   make(chan *Client),
			unregister: make(chan *Client),
		}
		go instance.run()
	})
	return instance
}

// run starts the WebSocket manager
func (m *Manager) run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client.UserID] = append(m.clients[client.UserID], client)
			m.mu.Unlock()
		case client := <-m.unregister:
			m.mu.Lock()
			if clients, ok := m.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						m.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						break
					}
				}
				if len(m.clients[client.UserID]) == 0 {
					delete(m.clients, client.UserID)
				}
			}
			m.mu.Unlock()
		}
	}
}

// RegisterClient registers a new WebSocket client
func (m *Manager) RegisterClient(client *Client) {
	m.register <- client
}

// UnregisterClient unregisters a WebSocket client
func (m *Manager) UnregisterClient(client *Client) {
	m.unregister <- client
}

// SendNotification sends a notification to a specific user
func (m *Manager) SendNotification(userID uint, notification *Notification) error {
	m.mu.RLock()
	clients, ok := m.clients[userID]
	m.mu.RUnlock()

	if !ok {
		return nil // No clients connected for this user
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	for _, client := range clients {
		if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			// Handle error but continue sending to other clients
			continue
		}
	}

	return nil
}

// SendImportProgress reports how far a bulk import has come.
func (m *Manager) SendImportProgress(userID, folderID uint, done, total int) {
	notification := &Notification{
		Type:     ImportProgress,
		UserID:   userID,
		FolderID: folderID,
		Progress: done,
		Total:    total,
	}
	m.SendNotification(userID, notification)
}

// SendImportComplete announces a finished bulk import.
func (m *Manager) SendImportComplete(userID, folderID uint, data map[string]interface{}) {
	notification := &Notification{
		Type:     ImportComplete,
		UserID:   userID,
		FolderID: folderID,
		Data:     data,
	}
	m.SendNotification(userID, notification)
}

// SendImportError reports a failed bulk import.
func (m *Manager) SendImportError(userID, folderID uint, errorMsg string) {
	notification := &Notification{
		Type:     ImportError,
		UserID:   userID,
		FolderID: folderID,
		Message:  errorMsg,
	}
	m.SendNotification(userID, notification)
}

// SendTreeChanged nudges other sessions of the same user to reload the tree.
func (m *Manager) SendTreeChanged(userID uint) {
	notification := &Notification{
		Type:   TreeChanged,
		UserID: userID,
	}
	m.SendNotification(userID, notification)
}
