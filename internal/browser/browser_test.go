package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Headless {
		t.Error("Expected a visible browser by default")
	}

	if opts.Timeout != 30*time.Second {
		t.Errorf("Expected timeout to be 30s, got %v", opts.Timeout)
	}

	if opts.ViewportWidth != 1920 || opts.ViewportHeight != 1080 {
		t.Errorf("Expected viewport to be 1920x1080, got %dx%d", opts.ViewportWidth, opts.ViewportHeight)
	}

	if opts.Locale != "sr-Latn-RS" {
		t.Errorf("Expected locale to be sr-Latn-RS, got %s", opts.Locale)
	}
}

func TestLocatorSelector(t *testing.T) {
	tests := []struct {
		loc  Locator
		want string
	}{
		{XPath("//button[@aria-label='Sledeća strana']"), "xpath=//button[@aria-label='Sledeća strana']"},
		{Class("MuiDataGrid-row"), ".MuiDataGrid-row"},
		{CSS("[aria-label]"), "css=[aria-label]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.loc.Selector())
	}
	assert.Equal(t, "MuiDataGrid-row", Class("MuiDataGrid-row").String())
}

type clickRecorder struct {
	calls     []string
	scrollErr error
	clickErr  error
}

func (c *clickRecorder) Text() (string, error)            { return "", nil }
func (c *clickRecorder) Attribute(string) (string, error) { return "", nil }
func (c *clickRecorder) InnerHTML() (string, error)       { return "", nil }
func (c *clickRecorder) Visible() (bool, error)           { return true, nil }
func (c *clickRecorder) Enabled() (bool, error)           { return true, nil }

func (c *clickRecorder) ScrollIntoView() error {
	c.calls = append(c.calls, "scroll")
	return c.scrollErr
}

func (c *clickRecorder) Click() error {
	c.calls = append(c.calls, "click")
	return c.clickErr
}

func TestClickSafely(t *testing.T) {
	t.Run("scrolls then clicks", func(t *testing.T) {
		el := &clickRecorder{}
		require.NoError(t, ClickSafely(context.Background(), el, time.Millisecond))
		assert.Equal(t, []string{"scroll", "click"}, el.calls)
	})

	t.Run("scroll failure skips click", func(t *testing.T) {
		el := &clickRecorder{scrollErr: errors.New("detached")}
		err := ClickSafely(context.Background(), el, 0)
		require.Error(t, err)
		assert.Equal(t, []string{"scroll"}, el.calls)
	})

	t.Run("click failure is wrapped", func(t *testing.T) {
		el := &clickRecorder{clickErr: errors.New("intercepted")}
		err := ClickSafely(context.Background(), el, 0)
		assert.ErrorIs(t, err, el.clickErr)
	})

	t.Run("cancelled context stops the settle wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		el := &clickRecorder{}
		err := ClickSafely(ctx, el, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{"scroll"}, el.calls)
	})
}

func TestSessionInitErrorUnwraps(t *testing.T) {
	cause := errors.New("driver missing")
	var err error = &SessionInitError{Err: cause}

	assert.ErrorIs(t, err, cause)
	var sie *SessionInitError
	assert.True(t, errors.As(err, &sie))
}
