package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/meigma/oaktms"
)

const (
	extractChoices = "[y]es/[N]o/[a]lways/[q]uit> "
	packChoices    = "[y]es/[N]o> "
)

// prompter asks overwrite questions on the terminal. When stdin is not a
// terminal every question is answered with the default.
type prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// ask prints question and choices and returns the lowercased answer.
// End of input answers with "".
func (p *prompter) ask(question, choices string) (string, error) {
	fmt.Fprintf(p.out, "%s\n%s", question, choices)
	if !p.interactive {
		fmt.Fprintln(p.out)
		return "", nil
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}

func parseExtractAnswer(answer string) oaktms.Decision {
	switch answer {
	case "y", "yes":
		return oaktms.Overwrite
	case "a", "always":
		return oaktms.OverwriteAll
	case "q", "quit":
		return oaktms.Abort
	default:
		return oaktms.Skip
	}
}

func parseYesNo(answer string) bool {
	return answer == "y" || answer == "yes"
}

// overwrite returns an OverwriteFunc that asks about each existing file.
func (p *prompter) overwrite() oaktms.OverwriteFunc {
	return func(_, dest string) (oaktms.Decision, error) {
		answer, err := p.ask(dest+" already exists - overwrite?", extractChoices)
		if err != nil {
			return oaktms.Abort, err
		}
		d := parseExtractAnswer(answer)
		switch d {
		case oaktms.Skip:
			fmt.Fprintln(p.out, "Skipping!")
		case oaktms.Abort:
			fmt.Fprintln(p.out, "Exiting!")
		}
		return d, nil
	}
}

// confirm asks a yes/no question defaulting to no.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question, packChoices)
	if err != nil {
		return false, err
	}
	return parseYesNo(answer), nil
}
