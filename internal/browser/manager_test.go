// internal/browser/manager_test.go
package browser

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/formrun/internal/config"
)

// ExecAllocatorOption values are opaque functions, so these tests assert on
// option counts relative to a baseline rather than on flag contents.

func TestBuildAllocatorOptions(t *testing.T) {
	base := config.NewDefaultConfig().Browser
	baseline := len(buildAllocatorOptions(&base))

	t.Run("custom args add one option each", func(t *testing.T) {
		cfg := base
		cfg.Args = []string{"--window-size=1280,720", "--lang=en-US", "--mute-audio"}
		opts := buildAllocatorOptions(&cfg)
		assert.Equal(t, baseline+3, len(opts))
	})

	t.Run("user agent adds an option", func(t *testing.T) {
		cfg := base
		cfg.UserAgent = "formrun-test/1.0"
		opts := buildAllocatorOptions(&cfg)
		assert.Equal(t, baseline+1, len(opts))
	})

	t.Run("container flags present on linux", func(t *testing.T) {
		cfg := base
		opts := buildAllocatorOptions(&cfg)
		if runtime.GOOS == "linux" {
			// Defaults plus headless, ignore-certificate-errors,
			// disable-extensions, disable-gpu, and three container flags.
			assert.GreaterOrEqual(t, len(opts), 7)
		}
		assert.NotEmpty(t, opts)
	})
}
