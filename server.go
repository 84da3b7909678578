package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocket clients
var (
	wsClients   = make(map[*Client]bool)
	wsClientsMu sync.RWMutex
)

type Client struct {
	conn *websocket.Conn
	send chan interface{}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			switch v := msg.(type) {
			case []byte:
				if err := c.conn.WriteMessage(websocket.BinaryMessage, v); err != nil {
					return
				}
			default:
				if err := c.conn.WriteJSON(v); err != nil {
					return
				}
			}
		}
	}
}

// runServerAddr starts the HTTP/WebSocket API: GET/POST the next run's
// Config, trigger a run, fetch the last Result, and stream run-completion
// events over /ws.
func runServerAddr(addr string) {
	upgrader := websocket.Upgrader{
		CheckOrigin:     func(r *http.Request) bool { return true },
		ReadBufferSize:  1024,
		WriteBufferSize: 65536,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", handleHealth)
	mux.HandleFunc("/api/config", handleConfigRouter)
	mux.HandleFunc("/api/config/reset", handleConfigReset)
	mux.HandleFunc("/api/run/start", handleRunStart)
	mux.HandleFunc("/api/run/status", handleRunStatus)
	mux.HandleFunc("/api/run/cancel", handleRunCancel)
	mux.Handle("/api/result", withCompression(http.HandlerFunc(handleResult)))

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}

		log.Println("client connected")

		client := &Client{conn: conn, send: make(chan interface{}, 256)}

		wsClientsMu.Lock()
		wsClients[client] = true
		wsClientsMu.Unlock()

		go client.writePump()

		if result := serverState.snapshotResult(); result != nil {
			client.send <- map[string]interface{}{"type": "run_status", "running": false, "run_id": result.RunID}
		}

		defer func() {
			wsClientsMu.Lock()
			delete(wsClients, client)
			wsClientsMu.Unlock()
			close(client.send)
			log.Println("client disconnected")
		}()

		// The only inbound message clients send is a run trigger; everything
		// else is read-only over this connection.
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg, &req); err == nil && req.Type == "run" {
				go triggerRun(serverState.snapshotConfig())
			}
		}
	})

	log.Printf("link simulator server listening on http://localhost%s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

// handleConfigRouter dispatches GET/POST on /api/config to the matching
// handler, folding both methods into one registered route.
func handleConfigRouter(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		handleConfigGet(w, r)
		return
	}
	handleConfigUpdate(w, r)
}

func broadcastJSON(msg interface{}) {
	wsClientsMu.RLock()
	defer wsClientsMu.RUnlock()

	for client := range wsClients {
		select {
		case client.send <- msg:
		default:
		}
	}
}
