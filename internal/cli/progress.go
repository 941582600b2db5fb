package cli

import (
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// newProgress returns a callback that drives a progress bar created lazily
// on the first report, once the total is known.
func newProgress(description string) func(done, total int) {
	var (
		bar *progressbar.ProgressBar
		mu  sync.Mutex
	)

	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", description)),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		_ = bar.Set(done)
	}
}
