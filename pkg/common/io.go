package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	log "github.com/echocat/slf4g"
)

type settable interface {
	IsZero() bool
	Set(string) error
}

func RequestContentIfRequiredFromTerminal(of settable, promptName string, canBeEmpty, isPassword bool) error {
	if of.IsZero() {
		l, err := readline.NewEx(&readline.Config{
			Stdin:  os.Stdin,
			Stdout: os.Stderr,
		})
		if err != nil {
			return fmt.Errorf("could not read from terminal for prompt %q: %w", promptName, err)
		}
		defer func() {
			_ = l.Close()
		}()

		prompt := fmt.Sprintf("Enter %s: ", promptName)
		l.SetPrompt(prompt)
		if isPassword {
			l.SetMaskRune('*')
		}
		l.ResetHistory()
		for of.IsZero() {
			var line string
			if isPassword {
				var b []byte
				b, err = l.ReadPassword(prompt)
				line = string(b)
			} else {
				line, err = l.Readline()
			}
			if err != nil {
				return fmt.Errorf("could not read from terminal for prompt %q: %w", promptName, err)
			}
			if err := of.Set(line); err != nil {
				log.WithError(err).
					Error()
			}
			if canBeEmpty && of.IsZero() {
				return nil
			}
		}
	}
	return nil
}

func RequestStringContentIfRequiredFromTerminal(of *string, promptName string, canBeEmpty, isPassword bool) error {
	buf := rawString(*of)
	if err := RequestContentIfRequiredFromTerminal(&buf, promptName, canBeEmpty, isPassword); err != nil {
		return err
	}
	*of = string(buf)
	return nil
}

type rawString []byte

func (v rawString) IsZero() bool {
	return len(v) == 0
}

func (v *rawString) Set(s string) error {
	*v = rawString(s)
	return nil
}

// RequestChoiceFromTerminal asks the operator to pick one of the given
// options and returns its index.
func RequestChoiceFromTerminal(options []string, promptName string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("nothing to choose for prompt %q", promptName)
	}

	var buf choice
	buf.max = len(options)
	for i, o := range options {
		_, _ = fmt.Fprintf(os.Stderr, "  [%d] %s\n", i+1, o)
	}
	if err := RequestContentIfRequiredFromTerminal(&buf, fmt.Sprintf("%s (1-%d)", promptName, len(options)), false, false); err != nil {
		return 0, err
	}
	return buf.value - 1, nil
}

type choice struct {
	value int
	max   int
}

func (v choice) IsZero() bool {
	return v.value == 0
}

func (v *choice) Set(plain string) error {
	n, err := strconv.Atoi(strings.TrimSpace(plain))
	if err != nil || n < 1 || n > v.max {
		return fmt.Errorf("illegal-choice: %s", plain)
	}
	v.value = n
	return nil
}
