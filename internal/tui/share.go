package tui

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/verte-zerg/retype/internal/model"
)

const shareEndpoint = "https://twitter.com/intent/tweet"

// ShareURL builds a pre-filled post announcing the result.
func ShareURL(res model.Result) string {
	message := fmt.Sprintf("My typing speed is %.2f WPM with %.2f%% accuracy! Know yours on retype.\n#TypingTest", res.WPM, res.Accuracy)
	q := url.Values{}
	q.Set("text", message)
	return shareEndpoint + "?" + q.Encode()
}

func openURL(link string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", link)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", link)
	default:
		cmd = exec.Command("xdg-open", link)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		// Reap the opener process.
		_ = cmd.Wait()
	}()
	return nil
}
