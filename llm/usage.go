package llm

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/manimation/manimation/logger"
	tellm "github.com/santiagomed/tellm/sdk"
)

// usageLogger batches prompt/completion pairs to a tellm server. A nil
// receiver disables it, so clients can call record unconditionally.
type usageLogger struct {
	client  *tellm.Client
	batchID string
	logger  logger.Logger
}

func newUsageLogger(url string, log logger.Logger) *usageLogger {
	if url == "" {
		return nil
	}
	return &usageLogger{
		client:  tellm.NewClient(url),
		batchID: generateBatchID(),
		logger:  log,
	}
}

func (u *usageLogger) record(prompt, res, model string, promptTokens, completionTokens int) {
	if u == nil {
		return
	}
	if err := u.client.Log(u.batchID, prompt, res, model, promptTokens, completionTokens); err != nil {
		u.logger.WithField("warning", err).Warn("failed to log to tellm")
	}
}

func generateBatchID() string {
	timestamp := time.Now().Unix()
	randomBytes := make([]byte, 8)
	rand.Read(randomBytes)

	id := make([]byte, 12)
	binary.BigEndian.PutUint32(id[:4], uint32(timestamp))
	copy(id[4:], randomBytes)

	return hex.EncodeToString(id)
}
