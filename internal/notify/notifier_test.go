package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

func TestCompose_NewChapter(t *testing.T) {
	c := model.Chapter{Name: "#101", Subtitle: "Mission: 101", ReleasedAt: time.Unix(1718550000, 0)}

	n := Compose(model.NotificationNewChapter, "SPYxFAMILY", c, true)

	assert.Equal(t, "SPYxFAMILY", n.Summary)
	assert.True(t, n.WaitForDismiss)
	assert.Contains(t, n.Body, "A new chapter has been released!")
	assert.Contains(t, n.Body, "#101 - Mission: 101")
	assert.Contains(t, n.Body, "Released on "+c.ReleasedAt.Local().Format("2006-01-02 15:04"))
}

func TestCompose_LatestKnown(t *testing.T) {
	n := Compose(model.NotificationBootstrap, "SPYxFAMILY", model.Chapter{Subtitle: "Mission: 1"}, false)

	assert.Equal(t, "Latest chapter: Mission: 1", n.Body)
	assert.Equal(t, model.NotificationBootstrap, n.Kind)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New("pager", zap.NewNop())
	require.Error(t, err)
}

func TestNew_Terminal(t *testing.T) {
	n, err := New(model.BackendTerminal, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &TerminalNotifier{}, n)
}
