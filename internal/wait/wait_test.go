package wait

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/price-registry-scraper/internal/browser"
	"github.com/maltedev/price-registry-scraper/internal/browser/browsertest"
	"github.com/maltedev/price-registry-scraper/pkg/logger"
)

var applyLoc = browser.XPath("//button[contains(text(), 'Primeni')]")

func TestAwaitPresent(t *testing.T) {
	page := browsertest.NewPage()
	want := &browsertest.Element{TextValue: "Primeni"}
	page.Set(applyLoc, want)

	w := New(page, nil, time.Millisecond)
	el, err := w.Await(context.Background(), applyLoc, 50*time.Millisecond, false)

	require.NoError(t, err)
	assert.Same(t, want, el)
	assert.Equal(t, 1, page.Queries(applyLoc))
}

func TestAwaitPollsUntilElementAppears(t *testing.T) {
	page := browsertest.NewPage()
	polls := 0
	page.Fallback = func(loc browser.Locator) []*browsertest.Element {
		polls++
		if polls < 3 {
			return nil
		}
		return []*browsertest.Element{{}}
	}

	w := New(page, nil, time.Millisecond)
	_, err := w.Await(context.Background(), applyLoc, time.Second, false)

	require.NoError(t, err)
	assert.Equal(t, 3, polls)
}

func TestAwaitClickableSkipsHiddenAndDisabled(t *testing.T) {
	page := browsertest.NewPage()
	hidden := &browsertest.Element{Hidden: true}
	disabled := &browsertest.Element{Disabled: true}
	ready := &browsertest.Element{}
	page.Set(applyLoc, hidden, disabled, ready)

	w := New(page, nil, time.Millisecond)

	el, err := w.Await(context.Background(), applyLoc, 20*time.Millisecond, true)
	require.NoError(t, err)
	assert.Same(t, ready, el)

	el, err = w.Await(context.Background(), applyLoc, 20*time.Millisecond, false)
	require.NoError(t, err)
	assert.Same(t, hidden, el, "presence accepts the first match")
}

func TestAwaitTimeout(t *testing.T) {
	page := browsertest.NewPage()
	page.Set(applyLoc, &browsertest.Element{Disabled: true})
	rec := logger.NewRecorder(10)

	w := New(page, rec, time.Millisecond)
	_, err := w.Await(context.Background(), applyLoc, 10*time.Millisecond, true)

	var nf *ElementNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, applyLoc, nf.Locator)
	assert.True(t, nf.Clickable)
	assert.Contains(t, err.Error(), "Primeni")
	assert.Contains(t, err.Error(), "clickable")

	entries := rec.Tail(0)
	last := entries[len(entries)-1]
	assert.Equal(t, logger.LevelError, last.Level)
	assert.True(t, strings.HasPrefix(last.Message, "Timeout waiting for element"))
}

func TestAwaitKeepsLastQueryError(t *testing.T) {
	page := browsertest.NewPage()
	page.QueryErr = errors.New("target closed")

	w := New(page, nil, time.Millisecond)
	_, err := w.Await(context.Background(), applyLoc, 5*time.Millisecond, false)

	assert.ErrorIs(t, err, page.QueryErr)
	var nf *ElementNotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestAwaitContextCancelled(t *testing.T) {
	page := browsertest.NewPage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(page, nil, time.Millisecond)
	start := time.Now()
	_, err := w.Await(ctx, applyLoc, time.Hour, false)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
