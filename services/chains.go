package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/walkitapp/walkit/config"
	"github.com/walkitapp/walkit/utils"
)

// StepMirror publishes recorded step counts to external ledgers. Mirroring is
// best effort; implementations must never fail the activity that triggered it.
type StepMirror interface {
	MirrorSteps(ctx context.Context, userID string, stepCount int)
}

// MultiMirror fans a step record out to every configured chain endpoint.
// Each target is handled independently; a failing target is logged and the
// rest still receive the record.
type MultiMirror struct {
	targets []config.ChainTarget
	client  *http.Client
}

// NewMultiMirror returns nil when no targets are configured so callers can
// skip mirroring entirely.
func NewMultiMirror(targets []config.ChainTarget) *MultiMirror {
	if len(targets) == 0 {
		return nil
	}
	return &MultiMirror{
		targets: targets,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *MultiMirror) MirrorSteps(ctx context.Context, userID string, stepCount int) {
	payload, err := json.Marshal(map[string]any{
		"user_id":    userID,
		"step_count": stepCount,
		"recorded":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	for _, target := range m.targets {
		if err := m.post(ctx, target, payload); err != nil {
			if utils.Logger == nil {
				continue
			}
			utils.Logger.Warn("step mirror failed",
				zap.String("url", target.URL),
				zap.String("contract", target.Contract),
				zap.Error(err))
		}
	}
}

func (m *MultiMirror) post(ctx context.Context, target config.ChainTarget, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if target.Contract != "" {
		req.Header.Set("X-Contract-Address", target.Contract)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return &mirrorStatusError{status: resp.Status}
	}
	return nil
}

type mirrorStatusError struct {
	status string
}

func (e *mirrorStatusError) Error() string {
	return "mirror endpoint returned " + e.status
}
