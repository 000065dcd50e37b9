package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nikolayk812/pickup-checkout/internal/port"
	"github.com/segmentio/kafka-go"
)

const OrdersTopic = "orders.committed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type orderCommittedLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type orderCommittedPayload struct {
	OrderID   string               `json:"order_id"`
	OwnerID   string               `json:"owner_id"`
	SlotID    string               `json:"slot_id"`
	Day       string               `json:"day"`
	Window    string               `json:"window"`
	Total     string               `json:"total"`
	Currency  string               `json:"currency"`
	Lines     []orderCommittedLine `json:"lines"`
	CreatedAt time.Time            `json:"created_at"`
}

// KafkaNotifier publishes committed orders keyed by order id, so every event
// for one order lands on the same partition.
type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(w messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: w}
}

func NewWriter(brokersCSV, topic string) *kafka.Writer {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func (n *KafkaNotifier) OrderCommitted(ctx context.Context, event port.OrderCommittedEvent) error {
	data, err := json.Marshal(mapEventToPayload(event))
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}

// LogNotifier is used when no brokers are configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) OrderCommitted(ctx context.Context, event port.OrderCommittedEvent) error {
	n.logger.InfoContext(ctx, "order committed",
		"order_id", event.OrderID,
		"owner_id", event.OwnerID,
		"day", event.Day.String(),
		"window", event.Window,
		"total", event.Total.String())
	return nil
}

func mapEventToPayload(event port.OrderCommittedEvent) orderCommittedPayload {
	lines := make([]orderCommittedLine, 0, len(event.Lines))
	for _, l := range event.Lines {
		lines = append(lines, orderCommittedLine{
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Amount.StringFixed(2),
		})
	}

	return orderCommittedPayload{
		OrderID:   event.OrderID.String(),
		OwnerID:   event.OwnerID,
		SlotID:    event.SlotID.String(),
		Day:       event.Day.String(),
		Window:    string(event.Window),
		Total:     event.Total.Amount.StringFixed(2),
		Currency:  event.Total.Currency.String(),
		Lines:     lines,
		CreatedAt: event.CreatedAt.UTC(),
	}
}
