package apply

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// TerminalPrompter talks to the operator over stdio. It is the only
// interactive-mode implementation; tests use a stub Prompter instead.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

// Acknowledge prints the violation and waits for a newline.
func (p *TerminalPrompter) Acknowledge(ev model.ViolationEvent) error {
	fmt.Fprintf(p.Out, "\nviolation: %s\n%s\nelapsed: %s\npress enter to skip this job... ",
		ev.Type, ev.Message, ev.Elapsed.Round(100*time.Millisecond))
	_, err := bufio.NewReader(p.In).ReadString('\n')
	return err
}

// ConfirmSubmit asks for a y/n before sending the final submission.
func (p *TerminalPrompter) ConfirmSubmit(job model.Job) (bool, error) {
	fmt.Fprintf(p.Out, "\nsubmit application for job %s? [y/N] ", job.ID)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
