// Package dashboard provides event handling and message formatting for the dashboard.
package dashboard

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Handler formats daemon activity as dashboard messages. It satisfies the
// daemon's Notifier interface, bridging between the sync daemon and the
// WebSocket server.
type Handler struct {
	server *Server
	logger *log.Logger

	// Statistics tracking
	statsMu sync.Mutex
	stats   StatsData
}

// NewHandler creates a new event handler connected to a dashboard server
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}

	return &Handler{
		server: server,
		logger: logger,
		stats: StatsData{
			Changes: make(map[string]int),
		},
	}
}

// OnDocChange handles coalesced document change events
func (h *Handler) OnDocChange(kind, path string, featureNum *int) {
	h.logger.Printf("Document %s: %s", kind, path)

	h.statsMu.Lock()
	h.stats.Changes[kind]++
	h.statsMu.Unlock()

	data := DocUpdateData{
		Path:    path,
		Kind:    kind,
		Feature: featureNum,
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal doc data: %v", err)
		return
	}

	msg := Message{
		Type:      MessageTypeDocUpdate,
		Timestamp: time.Now(),
		Data:      dataJSON,
	}
	h.server.Broadcast(msg)

	h.broadcastStats()
}

// OnSyncComplete handles full sync completion events
func (h *Handler) OnSyncComplete(synced int, errors []string, duration time.Duration) {
	h.logger.Printf("Sync complete: %d features in %v (%d errors)", synced, duration, len(errors))

	h.statsMu.Lock()
	h.stats.Syncs++
	h.stats.LastSync = time.Now()
	h.statsMu.Unlock()

	data := SyncCompleteData{
		FeaturesSynced: synced,
		Errors:         errors,
		Duration:       duration,
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal sync data: %v", err)
		return
	}

	msg := Message{
		Type:      MessageTypeSyncComplete,
		Timestamp: time.Now(),
		Data:      dataJSON,
	}
	h.server.Broadcast(msg)

	h.broadcastStats()
}

// broadcastStats sends current statistics to all clients
func (h *Handler) broadcastStats() {
	dataJSON, err := json.Marshal(h.GetStats())
	if err != nil {
		h.logger.Printf("Failed to marshal stats: %v", err)
		return
	}

	msg := Message{
		Type:      MessageTypeStats,
		Timestamp: time.Now(),
		Data:      dataJSON,
	}
	h.server.Broadcast(msg)
}

// GetStats returns a copy of the current statistics
func (h *Handler) GetStats() StatsData {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()

	changes := make(map[string]int, len(h.stats.Changes))
	for kind, count := range h.stats.Changes {
		changes[kind] = count
	}
	return StatsData{
		Changes:  changes,
		Syncs:    h.stats.Syncs,
		LastSync: h.stats.LastSync,
	}
}
