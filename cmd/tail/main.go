// Command tail prints diary events from the NATS stream as they happen.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"magic-diary-be/internal/config"
	"magic-diary-be/pkg/events"
	pktNats "magic-diary-be/pkg/nats"

	"github.com/fatih/color"
)

func main() {
	session := flag.String("session", "", "only show events for this session id")
	durable := flag.String("durable", "", "durable consumer name, empty for live events only")
	flag.Parse()

	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		log.Fatal("NATS_URL not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatal(err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sub.Subscribe(ctx, pktNats.SubjectPrefix+"diary.>", *durable, func(_ context.Context, e events.Event) error {
		if *session != "" && events.SessionID(e) != *session {
			return nil
		}
		printEvent(e)
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	color.Cyan("Listening on %s", cfg.App.NatsURL)
	<-ctx.Done()
}

func printEvent(e events.Event) {
	stamp := e.Timestamp().Format("15:04:05.000")
	id := events.SessionID(e)
	data := e.Payload()

	switch e.EventType() {
	case events.TypeTurnResolved:
		if degraded, _ := data["degraded"].(bool); degraded {
			color.Yellow("%s [%s] %s (fallback)", stamp, id, e.EventType())
			return
		}
		color.Green("%s [%s] %s", stamp, id, e.EventType())
	case events.TypeConversationReset:
		color.Red("%s [%s] %s", stamp, id, e.EventType())
	default:
		fmt.Printf("%s [%s] %s\n", stamp, id, e.EventType())
	}
}
