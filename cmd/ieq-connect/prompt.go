package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tartampluch/ieq-connect/internal/config"
)

// readLine prints prompt and returns the next input line, trimmed.
// End of input with no text is an error.
func (a *App) readLine(prompt string) (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	fmt.Fprint(a.Out, prompt)
	line, err := a.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a y/N question. --yes answers it; anything but an explicit
// yes declines.
func (a *App) confirm(question string) (bool, error) {
	if a.Yes {
		return true, nil
	}
	answer, err := a.readLine(question + config.MsgConfirmSuffix)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", config.ErrPromptRead, err)
	}
	switch strings.ToLower(answer) {
	case config.ConfirmYes, config.ConfirmYesLong, config.ConfirmYesPT, config.ConfirmYesLongPT:
		return true, nil
	}
	return false, nil
}

// readPassword returns value when set, otherwise prompts for it.
func (a *App) readPassword(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	pw, err := a.readLine(prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrReadPasswordInput, err)
	}
	return pw, nil
}

// aborted reports a declined confirmation.
func (a *App) aborted() error {
	fmt.Fprintln(a.Out, config.MsgAborted)
	return nil
}
