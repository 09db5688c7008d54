// Package audit records seed lifecycle and security events for after-the-fact
// review. Every call is best effort: a failing or saturated sink must never
// block or roll back money movement.
package audit

import "github.com/rs/zerolog"

// Severities for security events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

type SeedGeneration struct {
	RoomID  string
	RoundID string
	Seed    string
	Context string
}

type SeedUsage struct {
	RoomID       string
	RoundID      string
	ServerSeed   string
	ClientSeed   string
	Nonce        string
	Participants []string
	WinnerIndex  int
	WinnerID     string
	ResultHash   string
	Context      string
}

type SecurityEvent struct {
	Type     string
	Severity string
	Details  map[string]any
}

type Sink interface {
	LogSeedGeneration(ev SeedGeneration)
	LogSeedUsage(ev SeedUsage)
	LogSecurityEvent(ev SecurityEvent)
}

// LogSink writes audit entries as structured log lines.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "audit").Logger()}
}

func (s *LogSink) LogSeedGeneration(ev SeedGeneration) {
	s.log.Info().
		Str("event", "seed_generation").
		Str("room_id", ev.RoomID).
		Str("round_id", ev.RoundID).
		Str("server_seed", ev.Seed).
		Str("context", ev.Context).
		Msg("server seed committed")
}

func (s *LogSink) LogSeedUsage(ev SeedUsage) {
	s.log.Info().
		Str("event", "seed_usage").
		Str("room_id", ev.RoomID).
		Str("round_id", ev.RoundID).
		Str("server_seed", ev.ServerSeed).
		Str("client_seed", ev.ClientSeed).
		Str("nonce", ev.Nonce).
		Strs("participants", ev.Participants).
		Int("winner_index", ev.WinnerIndex).
		Str("winner_id", ev.WinnerID).
		Str("result_hash", ev.ResultHash).
		Str("context", ev.Context).
		Msg("server seed used for resolution")
}

func (s *LogSink) LogSecurityEvent(ev SecurityEvent) {
	entry := s.log.Warn()
	if ev.Severity == SeverityCritical {
		entry = s.log.Error()
	}
	entry.
		Str("event", "security").
		Str("type", ev.Type).
		Str("severity", ev.Severity).
		Fields(ev.Details).
		Msg("security event")
}

// NopSink discards everything. Used in tests.
type NopSink struct{}

func (NopSink) LogSeedGeneration(SeedGeneration) {}
func (NopSink) LogSeedUsage(SeedUsage)           {}
func (NopSink) LogSecurityEvent(SecurityEvent)   {}
