// Command tak6tei is a 6x6 Tak engine speaking the Tak Engine Interface
// protocol over stdin/stdout, the headless counterpart to the teacher
// repository's UCI entrypoint.
package main

import (
	"log"
	"os"

	"github.com/ciekce-go/tak6tei/internal/engine"
	"github.com/ciekce-go/tak6tei/internal/storage"
	"github.com/ciekce-go/tak6tei/internal/tei"
)

func main() {
	store, err := storage.Open()
	if err != nil {
		log.Printf("session ledger unavailable, continuing without it: %v", err)
		store = nil
	} else {
		defer store.Close()
	}

	eng := engine.New()
	handler := tei.New(eng, store, os.Stdout, os.Stderr)
	handler.Run(os.Stdin)
}
