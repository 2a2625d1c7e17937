// +build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type AnalysisRequestEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	RadiusM   int       `json:"radius_m"`
	Hour      string    `json:"hour,omitempty"`
	Minute    string    `json:"minute,omitempty"`
	Period    string    `json:"period,omitempty"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	lat := flag.Float64("lat", 49.2827, "latitude")
	lon := flag.Float64("lon", -123.1207, "longitude")
	radius := flag.Int("radius", 500, "radius in meters")
	hour := flag.String("hour", "7", "hour 1-12, empty for no time")
	minute := flag.String("minute", "30", "minute 0-59")
	period := flag.String("period", "PM", "AM or PM")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := AnalysisRequestEvent{
		RequestID: uuid.New(),
		Lat:       *lat,
		Lon:       *lon,
		RadiusM:   *radius,
		Hour:      *hour,
		Minute:    *minute,
		Period:    *period,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Публикация в стрим
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: "stream:scout:analysis:request",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Published request %s (message %s)\n", event.RequestID, result)

	// Ждём ответ в стриме готовых анализов
	deadline := time.Now().Add(30 * time.Second)
	lastID := "$"
	for time.Now().Before(deadline) {
		streams, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{"stream:scout:analysis:done", lastID},
			Block:   2 * time.Second,
			Count:   10,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			log.Fatalf("Failed to read done stream: %v", err)
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				lastID = msg.ID
				raw, _ := msg.Values["data"].(string)
				var done struct {
					RequestID uuid.UUID `json:"request_id"`
				}
				if json.Unmarshal([]byte(raw), &done) == nil && done.RequestID == event.RequestID {
					fmt.Println(raw)
					return
				}
			}
		}
	}

	log.Fatal("No answer within 30s")
}
