package websocket

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development (TODO: restrict in production)
	},
}

// Server fans injury alerts out to WebSocket subscribers. Alerts arrive on
// the Redis alert stream, so the broadcaster works even when the engine
// runs in a separate process.
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	cache  *cache.RedisCache
}

// NewServer creates a new WebSocket server
func NewServer(cache *cache.RedisCache) *Server {
	return &Server{
		hub:   NewHub(),
		cache: cache,
	}
}

// Start starts the WebSocket server and the stream consumer, blocking until
// the listener fails.
func (s *Server) Start(ctx context.Context, port string) error {
	s.port = port

	go s.hub.Run()
	go s.consumeAlerts(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/injuries/alerts", s.handleAlerts)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	log.Printf("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// handleAlerts handles WebSocket connections for injury alert updates
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := newClient(s.hub, conn)
	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// Broadcast sends a message to all connected clients directly, bypassing
// the stream (used by tests).
func (s *Server) Broadcast(data []byte) {
	s.hub.Broadcast(data)
}

// consumeAlerts tails the Redis alert stream and broadcasts each entry.
// Only alerts published after startup are delivered; late subscribers get
// history from the REST API instead.
func (s *Server) consumeAlerts(ctx context.Context) {
	lastID := "$"

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := s.cache.Client().XRead(ctx, &redis.XReadArgs{
			Streams: []string{publisher.AlertStream, lastID},
			Block:   5 * time.Second,
			Count:   100,
		}).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			log.Printf("⚠️  alert stream read failed: %v", err)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				lastID = message.ID
				if data, ok := message.Values["data"].(string); ok {
					s.hub.Broadcast([]byte(data))
				}
			}
		}
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
