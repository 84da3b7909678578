// Command dferemote is a reference DFE/CDR collaborator: it satisfies
// dfe.RemoteClient's newline-delimited JSON protocol over TCP by running
// pkg/dfe's Null recovery for every request. It exists so dfe.RemoteClient
// has something real to dial, and as a template for a genuine external
// equalizer/CDR implementation.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net"

	"github.com/ocupoint/linksim/pkg/dfe"
)

type request struct {
	Config dfe.Config `json:"config"`
	T      []float64  `json:"t"`
	Y      []float64  `json:"y"`
}

type response struct {
	Output dfe.Output `json:"output"`
	Error  string     `json:"error,omitempty"`
}

func main() {
	addr := flag.String("addr", ":9090", "address to listen on")
	flag.Parse()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	log.Printf("dferemote listening on %s", *addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("accept: %v", err)
			continue
		}
		go serve(conn)
	}
}

func serve(conn net.Conn) {
	defer conn.Close()
	log.Printf("client connected: %s", conn.RemoteAddr())

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			log.Printf("client disconnected: %s", conn.RemoteAddr())
			return
		}

		var req request
		resp := response{}
		if err := json.Unmarshal(line, &req); err != nil {
			resp.Error = err.Error()
		} else {
			runner := dfe.Null{Config: req.Config}
			out, err := runner.Run(req.T, req.Y)
			if err != nil {
				resp.Error = err.Error()
			} else {
				resp.Output = out
			}
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			log.Printf("encode response: %v", err)
			return
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			log.Printf("write response: %v", err)
			return
		}
	}
}
