package shared

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptYesNo asks a question on out and reads the answer from in. Anything but an
// answer starting with n counts as yes. With assumeYes set nothing is read.
func PromptYesNo(in io.Reader, out io.Writer, prompt string, assumeYes bool) (bool, error) {
	_, _ = fmt.Fprint(out, prompt)
	if assumeYes {
		_, _ = fmt.Fprintln(out, "Y (non-interactive mode)")
		return true, nil
	}

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to prompt user: %w", err)
	}

	normal := strings.ToLower(strings.TrimSpace(answer))
	if len(normal) > 0 && normal[0] == 'n' {
		return false, nil
	}
	return true, nil
}
