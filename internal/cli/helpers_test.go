package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rewind/pkg/domain"
)

func TestInterruptibleReader(t *testing.T) {
	cancel := make(chan struct{})
	r := NewInterruptibleReader(strings.NewReader("abc"), cancel)

	buf := make([]byte, 3)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))

	close(cancel)
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, HandleExecutionError(nil))
	assert.NoError(t, HandleExecutionError(fmt.Errorf("input error: %w", ErrInterrupted)))
	assert.NoError(t, HandleExecutionError(context.Canceled))
	assert.NoError(t, HandleExecutionError(io.EOF))

	boom := errors.New("boom")
	assert.ErrorIs(t, HandleExecutionError(boom), boom)
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger("loud", false)
	assert.Error(t, err)

	logger, err := NewLogger("loud", true)
	require.NoError(t, err, "debug overrides the level")
	assert.NotNil(t, logger)
}

func TestTimelineMarkdown(t *testing.T) {
	sess := &domain.Session{
		ID:        "doc",
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	sess.Timeline.States = []domain.Document{
		{"counter": 0, "notes": []string{}},
		{"counter": 1, "notes": []string{"a|b"}},
	}
	sess.Timeline.Cursor = 1

	md := TimelineMarkdown(sess, []string{"counter", "notes"})
	assert.Contains(t, md, "# Session `doc`")
	assert.Contains(t, md, "Step 2 of 2")
	assert.Contains(t, md, "| # | | counter | notes |")
	assert.Contains(t, md, "| 1 |  | 0 | [] |")
	assert.Contains(t, md, `| 2 | **>** | 1 | [a\|b] |`)
}
