package sink

import (
	"github.com/rs/zerolog"

	"evt/pkg/evt"
)

func logHandler(log zerolog.Logger) evt.Handler {
	return func(recv any, args ...any) {
		r := receiverOf(recv)
		log.Info().Str("event", r.Event).Str("sink", r.Label).Interface("args", args).Msg("event delivered")
	}
}
