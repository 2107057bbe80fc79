package service

import (
	"context"
	"log/slog"

	"github.com/casefolio/stepup/internal/mfa/domain"
)

// CodeSender delivers challenge codes. Delivery is an external concern; the
// challenge counts as issued the moment it is stored, regardless of whether
// the send ultimately lands.
type CodeSender interface {
	Send(ctx context.Context, channel domain.Channel, destination, code string) error
}

// SlogCodeSender logs instead of sending. Useful in development and tests;
// production wires the platform notification service here. The code itself
// is never logged.
type SlogCodeSender struct {
	Logger *slog.Logger
}

func (s *SlogCodeSender) Send(ctx context.Context, channel domain.Channel, destination, code string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "challenge code issued",
		"channel", string(channel),
		"destination", maskDestination(destination),
	)
	return nil
}

// maskDestination keeps just enough of an address to be recognizable in
// logs: last 3 chars of a phone number, first char + domain of an email.
func maskDestination(dest string) string {
	for i, r := range dest {
		if r == '@' {
			if i == 0 {
				return "***" + dest[i:]
			}
			return dest[:1] + "***" + dest[i:]
		}
	}
	if len(dest) <= 3 {
		return "***"
	}
	return "***" + dest[len(dest)-3:]
}
