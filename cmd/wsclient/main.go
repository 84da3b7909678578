// Command wsclient is a minimal WebSocket client for a running linksim
// server: it connects, requests a run, and prints every message it
// receives.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"

	"github.com/gorilla/websocket"
)

func main() {
	host := flag.String("addr", "localhost:8080", "linksim server address")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *host, Path: "/ws"}

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	if err := c.WriteJSON(map[string]string{"type": "run"}); err != nil {
		log.Fatal("write:", err)
	}

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			return
		}

		var pretty map[string]interface{}
		if err := json.Unmarshal(msg, &pretty); err != nil {
			log.Printf("received %d bytes (binary)", len(msg))
			continue
		}
		out, _ := json.MarshalIndent(pretty, "", "  ")
		log.Printf("%s", out)
	}
}
