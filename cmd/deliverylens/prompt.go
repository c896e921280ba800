package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sanspareilsmyn/deliverylens/internal/config"
)

var errNoAnswer = errors.New("no answer on standard input")

// prompter asks for the job parameters that neither the config nor the
// command line provided.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

func (p *prompter) complete(cfg *config.Config) error {
	if cfg.Input.Driver != "kafka" && cfg.Job.InputPath == "" {
		path, err := p.ask("1- Enter the absolute path from your events file:")
		if err != nil {
			return err
		}
		cfg.Job.InputPath = path
	}
	if cfg.Job.WindowMinutes == nil {
		answer, err := p.ask("2- Enter the window size to extract the performance metrics (in minutes):")
		if err != nil {
			return err
		}
		window, err := strconv.Atoi(answer)
		if err != nil {
			return fmt.Errorf("window size %q is not a whole number of minutes", answer)
		}
		cfg.Job.WindowMinutes = &window
	}
	return nil
}

func (p *prompter) ask(question string) (string, error) {
	fmt.Fprintln(p.out, question)
	for p.in.Scan() {
		if answer := strings.TrimSpace(p.in.Text()); answer != "" {
			return answer, nil
		}
	}
	if err := p.in.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%w: %s", errNoAnswer, question)
}
