package signal

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// MaxMessageLen caps one chat message in characters.
const MaxMessageLen = 500

// MaxFrameSize is the smallest read limit that still admits a MaxMessageLen
// message whose every character arrives as an escaped surrogate pair
// (12 bytes), plus room for the envelope.
const MaxFrameSize = MaxMessageLen*len(`\ud83d\ude00`) + 1024

func (ctl *SignalWSController) handleChat(ctx context.Context, sid core.SessionID, data json.RawMessage) {
	var msg string
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad chat payload")
		return
	}
	msg = strings.TrimSpace(msg)
	if err := ctl.validate.Var(msg, "required,max="+strconv.Itoa(MaxMessageLen)); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Int("chars", utf8.RuneCountInString(msg)).Msg("chat message dropped")
		return
	}
	ctl.submit(ctx, sid, domain.EventChatMessage, func() {
		ctl.Orch.Send(sid, msg)
	})
}
