// notify_sink is a local development stand-in for the notification gateway.
// It accepts webhook posts, logs them and can inject failures to exercise the
// caller's fire-and-forget handling.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"sync/atomic"
)

type message struct {
	RecipientID string            `json:"recipient_id"`
	Kind        string            `json:"kind"`
	Body        string            `json:"body"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func main() {
	var addr string
	var failEvery int
	flag.StringVar(&addr, "addr", envOrDefault("NOTIFY_SINK_ADDR", ":9090"), "listen address")
	flag.IntVar(&failEvery, "fail-every", 0, "return 500 for every Nth message (0 = never)")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	var received atomic.Int64

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n := received.Add(1)
		if failEvery > 0 && n%int64(failEvery) == 0 {
			logger.Printf("msg %d: injected failure", n)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var msg message
		if err := json.Unmarshal(body, &msg); err != nil {
			logger.Printf("msg %d: unparseable payload: %s", n, body)
		} else {
			logger.Printf("msg %d: kind=%s recipient=%s meta=%v body=%q", n, msg.Kind, msg.RecipientID, msg.Metadata, msg.Body)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	logger.Printf("notify sink listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
