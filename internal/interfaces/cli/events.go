package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/ChemSource/internal/bootstrap"
	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// NewEventsCmd tails the results topic.
func NewEventsCmd() *cobra.Command {
	var fromBeginning bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print result events from the kafka results topic",
		Long: "Consume the results topic and print one line per published result set\n" +
			"until interrupted. Requires kafka.enabled and kafka.brokers.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			kc := cliCtx.Config.Kafka
			if !kc.Enabled || len(kc.Brokers) == 0 {
				return errors.New(errors.ErrCodeInvalidConfig, "kafka is not configured; set kafka.enabled and kafka.brokers")
			}

			groupID := kc.GroupID
			offset := "latest"
			if fromBeginning {
				// A fresh group has no committed offsets, so it starts at the oldest message.
				groupID = kc.GroupID + "-" + uuid.NewString()[:8]
				offset = "earliest"
			}
			consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
				Brokers:         kc.Brokers,
				GroupID:         groupID,
				Topics:          []string{kc.Topic},
				AutoOffsetReset: offset,
				Security:        bootstrap.KafkaSecurity(kc),
			}, cliCtx.Logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			consumer.Subscribe(kc.Topic, newEventPrinter(cmd.OutOrStdout(), cliCtx.OutputFormat, cliCtx.Logger).Handle)
			if err := consumer.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s (ctrl-c to stop)\n", kc.Topic)

			<-ctx.Done()
			return consumer.Close()
		},
	}
	cmd.Flags().BoolVar(&fromBeginning, "from-beginning", false, "replay the topic from the oldest retained event")
	return cmd
}

// eventPrinter renders ResultsPublishedEvents as they arrive.
type eventPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	format string
	logger logging.Logger
}

func newEventPrinter(w io.Writer, format string, logger logging.Logger) *eventPrinter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &eventPrinter{w: w, format: format, logger: logger}
}

// Handle is a kafka.Handler. Events of other types are skipped, undecodable
// messages are logged and acknowledged.
func (p *eventPrinter) Handle(_ context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		p.logger.Warn("skipping undecodable message", logging.Err(err))
		return nil
	}
	if env.EventType != supplier.EventTypeResultsPublished {
		return nil
	}
	var ev supplier.ResultsPublishedEvent
	if err := env.DecodePayload(&ev); err != nil {
		p.logger.Warn("skipping event with invalid payload",
			logging.String("event_id", env.EventID), logging.Err(err))
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.format {
	case FormatJSON:
		line, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.w, string(line))
		return err
	case FormatYAML:
		doc, err := yaml.Marshal(ev)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(p.w, "---\n%s", doc)
		return err
	default:
		_, err = fmt.Fprintln(p.w, formatEventLine(ev))
		return err
	}
}

func formatEventLine(ev supplier.ResultsPublishedEvent) string {
	var sb strings.Builder
	sb.WriteString(ev.OccurredAt.UTC().Format(time.RFC3339))
	sb.WriteString("  ")
	sb.WriteString(color.CyanString(ev.CAS))
	fmt.Fprintf(&sb, "  %s  suppliers=%d", ev.ChemicalName, ev.Suppliers)
	if ev.TopSupplier != "" {
		fmt.Fprintf(&sb, "  top=%s (%.3f)", ev.TopSupplier, ev.TopScore)
	}
	if len(ev.Countries) > 0 {
		fmt.Fprintf(&sb, "  countries=%s", strings.Join(ev.Countries, ","))
	}
	fmt.Fprintf(&sb, "  run=%s", ev.RunID)
	return sb.String()
}

//Personal.AI order the ending
