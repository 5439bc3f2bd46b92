// clipboard_export.go - copy a descriptor's rendered text to the system
// clipboard.
//
// Grounded on video_backend_ebiten.go, which calls
// clipboard.Init() once and reads the system clipboard for paste support;
// this inverts that to a one-shot write.

package printmech

import (
	"fmt"

	"golang.design/x/clipboard"
)

// CopyDescriptorText renders d.Text() and writes it to the system
// clipboard. It calls clipboard.Init on every call and returns its error
// when no clipboard is available.
func CopyDescriptorText(d *PrintoutDescriptor) error {
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("clipboard_export: init clipboard: %w", err)
	}
	clipboard.Write(clipboard.FmtText, []byte(d.Text()))
	return nil
}
