package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"tienlen-lite/apps/server/internal/game"
	"tienlen-lite/apps/server/internal/gateway"
	"tienlen-lite/apps/server/internal/hub"
	"tienlen-lite/apps/server/internal/room"
	"tienlen-lite/apps/server/internal/store"
	"tienlen-lite/apps/server/internal/user"
)

func main() {
	st, err := store.NewFromEnv()
	if err != nil {
		log.Fatalf("[Server] Failed to init store: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := st.Ping(ctx); err != nil {
		log.Printf("[Server] Store unreachable at startup: %v", err)
	}
	cancel()

	users := user.NewService(st)
	rooms := room.NewService(st, users)
	games := game.NewService(st, rooms)
	gw := gateway.New(hub.New(), rooms, games)
	userHTTP := user.NewHTTPHandler(users)
	roomHTTP := room.NewHTTPHandler(rooms)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	userHTTP.RegisterRoutes(mux)
	roomHTTP.RegisterRoutes(mux)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("[Server] Starting on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}
